package images

// PerRow is the number of images placed side by side in one document block.
const PerRow = 2

// Rows partitions files into consecutive groups of PerRow, keeping their order.
// The last group holds a single file when the count is odd.
func Rows(files []string) [][]string {
	if len(files) == 0 {
		return nil
	}
	rows := make([][]string, 0, (len(files)+PerRow-1)/PerRow)
	for i := 0; i < len(files); i += PerRow {
		end := min(i+PerRow, len(files))
		rows = append(rows, files[i:end:end])
	}
	return rows
}

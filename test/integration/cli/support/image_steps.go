package support

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/tokenprinter/internal/docx"
	"github.com/MeKo-Tech/tokenprinter/internal/testutil"
)

// aFolderWithTokenImages writes count tokens named token01.png, token02.png and so on.
func (testCtx *TestContext) aFolderWithTokenImages(count int) error {
	dir, err := testCtx.GetTempDir("tokens")
	if err != nil {
		return err
	}
	colors := []color.NRGBA{testutil.TokenRed, testutil.TokenBlue}
	for i := range count {
		img := testutil.CreateTokenImage(60, 90, colors[i%len(colors)])
		path := filepath.Join(dir, fmt.Sprintf("token%02d.png", i+1))
		if err := imaging.Save(img, path); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	testCtx.InputDir = dir
	return nil
}

// anEmptyFolder uses a folder without images as input.
func (testCtx *TestContext) anEmptyFolder() error {
	dir, err := testCtx.GetTempDir("empty")
	if err != nil {
		return err
	}
	testCtx.InputDir = dir
	return nil
}

// theFolderAlsoContainsACorruptImage adds a .png whose bytes are not an image.
func (testCtx *TestContext) theFolderAlsoContainsACorruptImage(name string) error {
	path := filepath.Join(testCtx.InputDir, name)
	return os.WriteFile(path, []byte("definitely not a png"), 0o600)
}

// theFolderAlsoContainsTheFile adds a non-image file that must be ignored.
func (testCtx *TestContext) theFolderAlsoContainsTheFile(name string) error {
	path := filepath.Join(testCtx.InputDir, name)
	return os.WriteFile(path, []byte("notes"), 0o600)
}

func (testCtx *TestContext) inspect(filename string) (*docx.Summary, error) {
	summary, err := docx.Inspect(filepath.Join(testCtx.OutputDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", filename, err)
	}
	return summary, nil
}

// theDocumentShouldHavePicturesInRows checks the picture count and row count.
func (testCtx *TestContext) theDocumentShouldHavePicturesInRows(filename string, pictures, rows int) error {
	summary, err := testCtx.inspect(filename)
	if err != nil {
		return err
	}
	if got := summary.PictureCount(); got != pictures {
		return fmt.Errorf("expected %d pictures, got %d", pictures, got)
	}
	if got := len(summary.Blocks); got != rows {
		return fmt.Errorf("expected %d rows, got %d", rows, got)
	}
	return nil
}

// everyPictureInShouldBeMillimetresWide checks the fixed display width.
func (testCtx *TestContext) everyPictureInShouldBeMillimetresWide(filename string, mm int) error {
	summary, err := testCtx.inspect(filename)
	if err != nil {
		return err
	}
	want := docx.MM(float64(mm))
	for _, block := range summary.Blocks {
		for _, pic := range block.Pictures {
			if pic.CX != want {
				return fmt.Errorf("picture %s is %d EMU wide, want %d", pic.Name, pic.CX, want)
			}
			if pic.CY <= 0 {
				return fmt.Errorf("picture %s has no height", pic.Name)
			}
		}
	}
	return nil
}

// theDocumentPageShouldBe checks the section page size by name.
func (testCtx *TestContext) theDocumentPageShouldBe(filename, pageSize string) error {
	summary, err := testCtx.inspect(filename)
	if err != nil {
		return err
	}
	want, err := docx.ParsePageSize(pageSize)
	if err != nil {
		return err
	}
	if summary.PageWidth != want.Width || summary.PageHeight != want.Height {
		return fmt.Errorf("page is %dx%d twips, want %dx%d",
			summary.PageWidth, summary.PageHeight, want.Width, want.Height)
	}
	return nil
}

// RegisterImageSteps registers the input folder and document layout steps.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a folder with (\d+) token images?$`, testCtx.aFolderWithTokenImages)
	sc.Step(`^an empty folder$`, testCtx.anEmptyFolder)
	sc.Step(`^the folder also contains a corrupt image "([^"]*)"$`, testCtx.theFolderAlsoContainsACorruptImage)
	sc.Step(`^the folder also contains the file "([^"]*)"$`, testCtx.theFolderAlsoContainsTheFile)
	sc.Step(`^the document "([^"]*)" should have (\d+) pictures? in (\d+) rows?$`,
		testCtx.theDocumentShouldHavePicturesInRows)
	sc.Step(`^every picture in "([^"]*)" should be (\d+) mm wide$`, testCtx.everyPictureInShouldBeMillimetresWide)
	sc.Step(`^the page of "([^"]*)" should be "([^"]*)"$`, testCtx.theDocumentPageShouldBe)
}

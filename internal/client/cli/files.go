package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/docker/go-units"
)

// Files prompts for a project ID and lists its files.
func (a *App) Files(ctx context.Context) error {
	projectID, err := getSimpleText(a.reader, "Enter project id", os.Stdout)
	if err != nil {
		return err
	}

	files, err := a.api.ListFiles(ctx, projectID)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if len(files) == 0 {
		fmt.Println("No files yet")
		return nil
	}
	for _, f := range files {
		layout := "single"
		if f.IsChunked {
			layout = fmt.Sprintf("%d chunks", f.TotalChunks)
		}
		fmt.Printf("%s  %s  %s  %s\n", f.ID, f.Name, units.HumanSize(float64(f.Size)), layout)
	}
	return nil
}

// Upload prompts for a project ID and a local path, then uploads the file,
// reporting per-part progress as the parts complete.
func (a *App) Upload(ctx context.Context) error {
	projectID, err := getSimpleText(a.reader, "Enter project id", os.Stdout)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Enter path to file", os.Stdout)
	if err != nil {
		return err
	}

	file, err := a.transfer.UploadFile(ctx, projectID, path, func(done, total int) {
		fmt.Printf("Uploaded part %d/%d\n", done, total)
	})
	if err != nil {
		log.Printf("Upload failed: %v", err)
		return err
	}

	fmt.Printf("Uploaded %s (%s), id %s\n", file.Name, units.HumanSize(float64(file.Size)), file.ID)
	return nil
}

// Download prompts for a file ID and a destination path and fetches the file.
func (a *App) Download(ctx context.Context) error {
	fileID, err := getSimpleText(a.reader, "Enter file id", os.Stdout)
	if err != nil {
		return err
	}
	dest, err := getSimpleText(a.reader, "Enter destination path", os.Stdout)
	if err != nil {
		return err
	}

	file, err := a.transfer.DownloadFile(ctx, fileID, dest)
	if err != nil {
		log.Printf("Download failed: %v", err)
		return err
	}

	fmt.Printf("Saved %s (%s) to %s\n", file.Name, units.HumanSize(float64(file.Size)), dest)
	return nil
}

// RemoveFile prompts for a file ID and deletes the file.
func (a *App) RemoveFile(ctx context.Context) error {
	fileID, err := getSimpleText(a.reader, "Enter file id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.DeleteFile(ctx, fileID); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println("Deleted")
	return nil
}

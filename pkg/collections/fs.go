package collections

import (
	"io/fs"
	"log"
	"os"
)

// ListFiles is a convenience debugging function to log the files under a
// given dir.  A missing dir is logged, not returned.
func ListFiles(dir string) error {
	log.Println("Listing files under " + dir)
	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			log.Println(path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		log.Printf("%v\n", err)
		return nil
	}
	return err
}

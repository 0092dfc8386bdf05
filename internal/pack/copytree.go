package pack

import (
	"io"
	"os"
	"path/filepath"

	"github.com/docserver/zuparchive/internal/utils"
)

// copyTree recursively copies src into dst, creating directories as
// needed. It is used to assemble the staged archive input tree from
// each flavor's generator output directory, since the packer walks a
// single filesystem root (§4.8 step 7).
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return utils.WrapError("creating destination directory", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return utils.WrapError("opening source file", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return utils.WrapError("creating destination file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return utils.WrapError("copying file", err)
	}
	return out.Close()
}

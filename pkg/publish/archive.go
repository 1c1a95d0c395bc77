package publish

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

// DefaultConfiguration names the archive when no configuration is given
const DefaultConfiguration = "Release"

// ArchiveName returns {project}-{version}-{configuration}.zip
func ArchiveName(project, version, configuration string) string {
	if configuration == "" {
		configuration = DefaultConfiguration
	}
	return fmt.Sprintf("%s-%s-%s.zip", project, version, configuration)
}

// CreateArchive zips src recursively into dest. Entry names are relative to
// src and use forward slashes. An existing dest is removed first. It returns
// the number of files written.
func CreateArchive(src, dest string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", src)
	}

	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("remove existing archive: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	files, err := writeArchive(out, src, dest)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return 0, err
	}
	return files, nil
}

func writeArchive(w io.Writer, src, dest string) (int, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	absDest, _ := filepath.Abs(dest)
	files := 0

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if abs, _ := filepath.Abs(path); abs == absDest {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		if d.IsDir() {
			header.Name = name + "/"
			header.Method = zip.Store
			_, err := zw.CreateHeader(header)
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		header.Name = name
		header.Method = zip.Deflate
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := io.Copy(entry, f); err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}
		files++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := zw.Close(); err != nil {
		return 0, err
	}
	return files, nil
}

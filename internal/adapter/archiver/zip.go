package archiver

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/spf13/afero"

	"github.com/semmidev/mysqlbackup/internal/domain"
)

const tempSuffix = ".tmp"

type ZipArchiver struct {
	fs    afero.Fs
	level int
}

func NewZip(fs afero.Fs) *ZipArchiver {
	return &ZipArchiver{fs: fs, level: flate.BestCompression}
}

// Archive writes <database>.sql from folder for every database into dest,
// each under its bare file name. The archive is built next to dest and only
// renamed into place once the central directory has been written, so dest
// never holds an incomplete archive.
func (z *ZipArchiver) Archive(folder string, databases []string, dest string) (err error) {
	if len(databases) == 0 {
		return domain.ErrNothingToArchive
	}

	tmp := dest + tempSuffix
	f, err := z.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = z.fs.Remove(tmp)
		}
	}()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, z.level)
	})

	for _, database := range databases {
		if !domain.SafeDumpName(database) {
			err = fmt.Errorf("refusing archive entry for database %q", database)
			return err
		}
		if err = z.addFile(zw, folder, domain.DumpFilename(database)); err != nil {
			return err
		}
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err = z.fs.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	return nil
}

func (z *ZipArchiver) addFile(zw *zip.Writer, folder, name string) error {
	src, err := z.fs.Open(filepath.Join(folder, name))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to compress %s: %w", name, err)
	}

	return nil
}

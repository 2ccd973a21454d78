package archiver

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"github.com/semmidev/mysqlbackup/internal/domain"
)

func readArchive(fs afero.Fs, path string) map[string]string {
	f, err := fs.Open(path)
	So(err, ShouldBeNil)
	defer f.Close()

	info, err := f.Stat()
	So(err, ShouldBeNil)

	zr, err := zip.NewReader(f, info.Size())
	So(err, ShouldBeNil)

	entries := make(map[string]string)
	for _, file := range zr.File {
		rc, err := file.Open()
		So(err, ShouldBeNil)
		content, err := io.ReadAll(rc)
		So(err, ShouldBeNil)
		rc.Close()
		entries[file.Name] = string(content)
	}
	return entries
}

func TestZipArchiver(t *testing.T) {
	Convey("Given a ZipArchiver on the OS filesystem", t, func() {
		fs := afero.NewOsFs()
		archiver := NewZip(fs)

		root := t.TempDir()
		folder := filepath.Join(root, "2024-05-01")
		So(os.Mkdir(folder, 0755), ShouldBeNil)

		dumps := map[string]string{
			"app_db":  "CREATE DATABASE app_db;\nINSERT INTO t VALUES (1);\n",
			"logs_db": "CREATE DATABASE logs_db;\n",
		}
		for name, content := range dumps {
			So(os.WriteFile(filepath.Join(folder, name+".sql"), []byte(content), 0644), ShouldBeNil)
		}
		// Left behind by a failed dump; must not end up in the archive.
		So(os.WriteFile(filepath.Join(folder, "broken_db.sql"), []byte("partial"), 0644), ShouldBeNil)

		dest := folder + ".zip"

		Convey("When archiving the dumped databases", func() {
			err := archiver.Archive(folder, []string{"app_db", "logs_db"}, dest)

			Convey("It should contain exactly one flat entry per database", func() {
				So(err, ShouldBeNil)
				entries := readArchive(fs, dest)

				names := make([]string, 0, len(entries))
				for name := range entries {
					names = append(names, name)
				}
				sort.Strings(names)
				So(names, ShouldResemble, []string{"app_db.sql", "logs_db.sql"})
			})

			Convey("It should round-trip the dump contents byte for byte", func() {
				So(err, ShouldBeNil)
				entries := readArchive(fs, dest)
				So(entries["app_db.sql"], ShouldEqual, dumps["app_db"])
				So(entries["logs_db.sql"], ShouldEqual, dumps["logs_db"])
			})

			Convey("It should leave no temporary file behind", func() {
				_, statErr := os.Stat(dest + tempSuffix)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When a listed dump file is missing", func() {
			err := archiver.Archive(folder, []string{"app_db", "ghost_db"}, dest)

			Convey("It should fail without producing an archive", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "ghost_db.sql")

				_, statErr := os.Stat(dest)
				So(os.IsNotExist(statErr), ShouldBeTrue)
				_, statErr = os.Stat(dest + tempSuffix)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When a database name has path components", func() {
			So(os.WriteFile(filepath.Join(root, "escaped.sql"), []byte("outside"), 0644), ShouldBeNil)
			err := archiver.Archive(folder, []string{"app_db", "../escaped"}, dest)

			Convey("It should refuse it and produce no archive", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "../escaped")
				_, statErr := os.Stat(dest)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When there is nothing to archive", func() {
			err := archiver.Archive(folder, nil, dest)

			Convey("It should refuse and produce no archive", func() {
				So(errors.Is(err, domain.ErrNothingToArchive), ShouldBeTrue)
				_, statErr := os.Stat(dest)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When the destination directory does not exist", func() {
			err := archiver.Archive(folder, []string{"app_db"}, filepath.Join(root, "missing", "out.zip"))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to create archive")
		})
	})

	Convey("Given a ZipArchiver on an in-memory filesystem", t, func() {
		fs := afero.NewMemMapFs()
		archiver := NewZip(fs)

		So(fs.MkdirAll("/backup/2024-05-01", 0755), ShouldBeNil)
		So(afero.WriteFile(fs, "/backup/2024-05-01/app_db.sql", []byte("-- app"), 0644), ShouldBeNil)

		err := archiver.Archive("/backup/2024-05-01", []string{"app_db"}, "/backup/2024-05-01.zip")

		So(err, ShouldBeNil)
		So(readArchive(fs, "/backup/2024-05-01.zip"), ShouldResemble, map[string]string{"app_db.sql": "-- app"})
	})
}

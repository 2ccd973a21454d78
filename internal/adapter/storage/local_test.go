package storage

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestLocalStorage(t *testing.T) {
	Convey("Given a LocalStorage", t, func() {
		tempDir := t.TempDir()
		storage := NewLocal(afero.NewOsFs())

		Convey("Ensure method", func() {
			Convey("When the folder and its parents do not exist", func() {
				target := filepath.Join(tempDir, "new", "nested", "2024-05-01")
				err := storage.Ensure(target)

				Convey("It should create the whole path", func() {
					So(err, ShouldBeNil)
					info, err := os.Stat(target)
					So(err, ShouldBeNil)
					So(info.IsDir(), ShouldBeTrue)
				})
			})

			Convey("When called twice on the same path", func() {
				target := filepath.Join(tempDir, "2024-05-01")
				So(storage.Ensure(target), ShouldBeNil)

				existing := filepath.Join(target, "app_db.sql")
				So(os.WriteFile(existing, []byte("keep me"), 0644), ShouldBeNil)

				err := storage.Ensure(target)

				Convey("It should succeed and keep existing contents", func() {
					So(err, ShouldBeNil)
					content, err := os.ReadFile(existing)
					So(err, ShouldBeNil)
					So(string(content), ShouldEqual, "keep me")
				})
			})

			Convey("When the path is an existing file", func() {
				target := filepath.Join(tempDir, "2024-05-01")
				So(os.WriteFile(target, []byte("x"), 0644), ShouldBeNil)

				err := storage.Ensure(target)

				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "not a directory")
			})

			Convey("When a parent is a file", func() {
				parent := filepath.Join(tempDir, "blocker")
				So(os.WriteFile(parent, []byte("x"), 0644), ShouldBeNil)

				err := storage.Ensure(filepath.Join(parent, "2024-05-01"))

				So(err, ShouldNotBeNil)
			})
		})

		Convey("Remove method", func() {
			Convey("When the folder has dump files", func() {
				target := filepath.Join(tempDir, "2024-05-01")
				So(os.MkdirAll(target, 0755), ShouldBeNil)
				So(os.WriteFile(filepath.Join(target, "app_db.sql"), []byte("x"), 0644), ShouldBeNil)

				err := storage.Remove(target)

				Convey("It should delete the folder recursively", func() {
					So(err, ShouldBeNil)
					_, err := os.Stat(target)
					So(os.IsNotExist(err), ShouldBeTrue)
				})
			})

			Convey("When the folder does not exist", func() {
				err := storage.Remove(filepath.Join(tempDir, "missing"))
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given a LocalStorage on a read-only filesystem", t, func() {
		base := afero.NewMemMapFs()
		So(base.MkdirAll("/backup/2024-05-01", 0755), ShouldBeNil)
		storage := NewLocal(afero.NewReadOnlyFs(base))

		Convey("Ensure should fail for a new folder", func() {
			err := storage.Ensure("/backup/2024-05-02")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to create backup folder")
		})

		Convey("Ensure should succeed for an existing folder", func() {
			So(storage.Ensure("/backup/2024-05-01"), ShouldBeNil)
		})

		Convey("Remove should fail", func() {
			err := storage.Remove("/backup/2024-05-01")
			So(err, ShouldNotBeNil)
		})
	})
}

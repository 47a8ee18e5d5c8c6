package upload

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewLocalStorage", func() {
		It("creates a missing directory", func() {
			dir := filepath.Join(tmpDir, "nested", "uploads")
			_, err := NewLocalStorage(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(BeADirectory())
		})
	})

	Describe("Save", func() {
		var (
			filename string
			data     []byte
			saved    string
			err      error
		)

		BeforeEach(func() {
			filename = "abc_statement.pdf"
			data = []byte("%PDF-1.4")
		})

		JustBeforeEach(func() {
			saved, err = storage.Save(filename, data)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns the stored name", func() {
				Expect(saved).To(Equal(filename))
			})

			It("writes the file to disk", func() {
				content, readErr := os.ReadFile(filepath.Join(tmpDir, filename))
				Expect(readErr).NotTo(HaveOccurred())
				Expect(content).To(Equal(data))
			})
		})

		When("the directory has gone away", func() {
			BeforeEach(func() {
				Expect(os.RemoveAll(tmpDir)).To(Succeed())
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("writing file")))
			})
		})
	})

	Describe("Path", func() {
		It("joins the name onto the base directory", func() {
			Expect(storage.Path("abc_statement.pdf")).To(Equal(filepath.Join(tmpDir, "abc_statement.pdf")))
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("abc_statement.pdf", []byte("data"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("removes it", func() {
				Expect(storage.Delete("abc_statement.pdf")).To(Succeed())
				Expect(filepath.Join(tmpDir, "abc_statement.pdf")).NotTo(BeAnExistingFile())
			})
		})

		When("the file does not exist", func() {
			It("returns an error", func() {
				Expect(storage.Delete("missing.pdf")).To(MatchError(ContainSubstring("deleting file")))
			})
		})
	})
})

package scanning

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// minimalPDF builds a letter-size PDF with one line of Helvetica per page
func minimalPDF(pages ...string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var _ = Describe("Fitz", func() {
	var (
		dir  string
		fz   *Fitz
		path string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		fz = NewFitz()
	})

	When("the document is a photographed page", func() {
		BeforeEach(func() {
			img := image.NewRGBA(image.Rect(0, 0, 20, 10))
			img.Set(3, 3, color.RGBA{R: 200, A: 255})
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())
			path = filepath.Join(dir, "statement.jpg")
			Expect(os.WriteFile(path, buf.Bytes(), 0644)).To(Succeed())
		})

		It("reports no text layer", func() {
			pages, err := fz.PageTexts(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(BeEmpty())
		})

		It("renders it as a single page", func() {
			pages, err := fz.RenderPages(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))
			Expect(pages[0].Bounds().Dx()).To(Equal(20))
			Expect(pages[0].Bounds().Dy()).To(Equal(10))
		})
	})

	When("the document is a PDF with a text layer", func() {
		BeforeEach(func() {
			path = filepath.Join(dir, "statement.pdf")
			pdf := minimalPDF("HDFC Credit Card Statement", "Payment Due Date: 20/03/2024")
			Expect(os.WriteFile(path, pdf, 0644)).To(Succeed())
		})

		It("returns the text of each page in order", func() {
			pages, err := fz.PageTexts(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(2))
			Expect(pages[0]).To(ContainSubstring("HDFC Credit Card Statement"))
			Expect(pages[1]).To(ContainSubstring("Payment Due Date: 20/03/2024"))
		})

		It("renders one image per page", func() {
			images, err := fz.RenderPages(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(images).To(HaveLen(2))
			for _, img := range images {
				Expect(img.Bounds().Dx()).To(BeNumerically(">", 0))
				Expect(img.Bounds().Dy()).To(BeNumerically(">", img.Bounds().Dx()))
			}
		})

		It("is not mistaken for an image", func() {
			ok, err := isImageFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	When("the file does not exist", func() {
		BeforeEach(func() {
			path = filepath.Join(dir, "missing.pdf")
		})

		It("returns an error for text extraction", func() {
			_, err := fz.PageTexts(path)
			Expect(err).To(HaveOccurred())
		})

		It("returns an error for rendering", func() {
			_, err := fz.RenderPages(path)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("isImageFile", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, data, 0644)).To(Succeed())
		return path
	}

	It("recognizes PNG", func() {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1)))).To(Succeed())
		ok, err := isImageFile(write("a.png", buf.Bytes()))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("recognizes HEIC by its ftyp box", func() {
		ok, err := isImageFile(write("a.heic", []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00")))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("treats PDFs as documents", func() {
		ok, err := isImageFile(write("a.pdf", []byte("%PDF-1.7\n%âãÏÓ\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("handles empty files", func() {
		ok, err := isImageFile(write("empty", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("decodeImage", func() {
	It("rejects unknown formats", func() {
		_, err := decodeImage([]byte("definitely not an image"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported image format"))
	})
})

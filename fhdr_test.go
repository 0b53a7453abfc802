package tsfile

import (
	"testing"

	"github.com/windrow/tsfile/internal/fileop"
	"github.com/windrow/tsfile/internal/vfs"
)

func TestFhdrRoundTrip(t *testing.T) {
	fs := vfs.NewMemFS()
	fd, err := fs.Create("x.head")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := writeFhdr(fd, fileop.TypeHead); err != nil {
		t.Fatalf("writeFhdr: %v", err)
	}

	buf := make([]byte, FhdrSize)
	if _, err := fd.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if err := checkFhdr(buf, fileop.TypeHead); err != nil {
		t.Fatalf("checkFhdr: %v", err)
	}
}

func TestFhdrDetectsTypeMismatch(t *testing.T) {
	fs := vfs.NewMemFS()
	fd, err := fs.Create("x.data")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := writeFhdr(fd, fileop.TypeData); err != nil {
		t.Fatalf("writeFhdr: %v", err)
	}

	buf := make([]byte, FhdrSize)
	if _, err := fd.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if err := checkFhdr(buf, fileop.TypeTomb); err == nil {
		t.Fatalf("expected a file-type mismatch to be detected")
	}
}

func TestFhdrDetectsCorruption(t *testing.T) {
	fs := vfs.NewMemFS()
	fd, err := fs.Create("x.sma")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := writeFhdr(fd, fileop.TypeSma); err != nil {
		t.Fatalf("writeFhdr: %v", err)
	}

	buf := make([]byte, FhdrSize)
	if _, err := fd.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	buf[2] ^= 0xFF
	if err := checkFhdr(buf, fileop.TypeSma); err == nil {
		t.Fatalf("expected the flipped header byte to be detected")
	}
}

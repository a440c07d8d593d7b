package bytecode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sreader/lisp/ast"
)

type fakeVM struct {
	submitted []*ProcDescriptor
}

func (v *fakeVM) Submit(desc *ProcDescriptor) error {
	v.submitted = append(v.submitted, desc)
	return nil
}

func num(i int64) *ast.Number { return &ast.Number{IsInt: true, Int: i} }

func TestParseHeaderAcceptsSupportedMajors(t *testing.T) {
	for _, major := range []int64{1, 2} {
		form := &ast.Cons{Car: num(major), Cdr: &ast.Cons{Car: num(0), Cdr: ast.Nil}}
		h, err := ParseHeader(form)
		if err != nil {
			t.Fatalf("ParseHeader major=%d error: %v", major, err)
		}
		if h.Major != int(major) {
			t.Errorf("Major = %d, want %d", h.Major, major)
		}
	}
}

func TestParseHeaderRejectsUnknownMajor(t *testing.T) {
	form := &ast.Cons{Car: num(99), Cdr: &ast.Cons{Car: num(0), Cdr: ast.Nil}}
	_, err := ParseHeader(form)
	if err == nil {
		t.Fatal("expected a version mismatch error")
	}
}

func TestSwapWords32(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04}
	SwapWords32(buf)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("SwapWords32 = %v, want %v", buf, want)
		}
	}
}

func TestParseDescriptorSwapsOnEndianMismatch(t *testing.T) {
	code := &ast.BufLit{Bytes: []byte{0x01, 0x02, 0x03, 0x04}}
	form := &ast.Cons{Car: num(0), Cdr: &ast.Cons{Car: num(4), Cdr: &ast.Cons{
		Car: code,
		Cdr: &ast.Cons{Car: ast.Nil, Cdr: &ast.Cons{Car: ast.Nil, Cdr: ast.Nil}},
	}}}

	desc, err := ParseDescriptor(form, !hostBigEndian)
	if err != nil {
		t.Fatalf("ParseDescriptor error: %v", err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if desc.Code[i] != want[i] {
			t.Fatalf("Code = %v, want %v (byte-swapped)", desc.Code, want)
		}
	}

	descSame, err := ParseDescriptor(form, hostBigEndian)
	if err != nil {
		t.Fatalf("ParseDescriptor error: %v", err)
	}
	for i, b := range code.Bytes {
		if descSame.Code[i] != b {
			t.Fatalf("Code = %v, want unswapped %v", descSame.Code, code.Bytes)
		}
	}
}

func TestLoadParsesHeaderAndSubmitsDescriptors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.tlo")
	src := "(1 0 ())\n((0 4 #b'01020304' () ()))\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	vm := &fakeVM{}
	header, err := Load(path, vm)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if header.Major != 1 {
		t.Errorf("header.Major = %d, want 1", header.Major)
	}
	if len(vm.submitted) != 1 {
		t.Fatalf("submitted %d descriptors, want 1", len(vm.submitted))
	}
	if vm.submitted[0].NRegs != 4 {
		t.Errorf("NRegs = %d, want 4", vm.submitted[0].NRegs)
	}
}

func TestLoadSubmitsEveryDescriptorOfAForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.tlo")
	src := "(2 0 ())\n" +
		"((0 4 #b'01020304' () ()) (1 2 #b'aabbccdd' () ()))\n" +
		"((3 8 #b'00000000' () ()))\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	vm := &fakeVM{}
	if _, err := Load(path, vm); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(vm.submitted) != 3 {
		t.Fatalf("submitted %d descriptors, want 3 across two forms", len(vm.submitted))
	}
	if vm.submitted[1].NLevels != 1 || vm.submitted[1].NRegs != 2 {
		t.Errorf("second descriptor = (%d %d), want (1 2)",
			vm.submitted[1].NLevels, vm.submitted[1].NRegs)
	}
	if vm.submitted[2].NLevels != 3 {
		t.Errorf("third descriptor NLevels = %d, want 3", vm.submitted[2].NLevels)
	}
}

func TestLoadRejectsBadMajorVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.tlo")
	if err := os.WriteFile(path, []byte("(99 0 ())\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, &fakeVM{}); err == nil {
		t.Fatal("expected a version mismatch error")
	}
}

// Package symbols reads the exported symbol names of native shared libraries
// (ELF, PE and Mach-O) and checks them against the entry points a host binds to.
package symbols

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Format is the object file format of a library.
type Format string

const (
	FormatELF   Format = "elf"
	FormatPE    Format = "pe"
	FormatMachO Format = "macho"
)

var (
	// ErrUnsupportedFormat is returned for files that are not ELF, PE or Mach-O.
	ErrUnsupportedFormat = fmt.Errorf("unsupported library format")
	// ErrMissingExports is returned when required symbols are not exported.
	ErrMissingExports = fmt.Errorf("library is missing required exports")
)

// MissingExportsError lists the required symbols a library does not export.
type MissingExportsError struct {
	Path    string
	Missing []string
}

// Error implements the error interface for MissingExportsError.
func (e *MissingExportsError) Error() string {
	return fmt.Sprintf("%s does not export: %s", e.Path, strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrMissingExports.
func (e *MissingExportsError) Is(target error) bool {
	return target == ErrMissingExports
}

var (
	magicELF = []byte{0x7f, 'E', 'L', 'F'}
	magicPE  = []byte{'M', 'Z'}
)

// machoMagics are the thin Mach-O magic numbers in both byte orders.
var machoMagics = [][]byte{
	{0xfe, 0xed, 0xfa, 0xce}, {0xce, 0xfa, 0xed, 0xfe},
	{0xfe, 0xed, 0xfa, 0xcf}, {0xcf, 0xfa, 0xed, 0xfe},
}

// fatMagics mark universal binaries. Java class files share 0xcafebabe;
// those fail when the fat header is read.
var fatMagics = [][]byte{
	{0xca, 0xfe, 0xba, 0xbe}, {0xbe, 0xba, 0xfe, 0xca},
}

// Detect sniffs the object format of the file at path.
func Detect(path string) (Format, error) {
	format, _, err := detect(path)
	return format, err
}

// detect also reports whether a Mach-O file is a universal binary.
func detect(path string) (Format, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil {
		return "", false, fmt.Errorf("%w: %s is too short", ErrUnsupportedFormat, path)
	}

	switch {
	case bytes.Equal(header, magicELF):
		return FormatELF, false, nil
	case bytes.HasPrefix(header, magicPE):
		return FormatPE, false, nil
	}
	for _, magic := range machoMagics {
		if bytes.Equal(header, magic) {
			return FormatMachO, false, nil
		}
	}
	for _, magic := range fatMagics {
		if bytes.Equal(header, magic) {
			return FormatMachO, true, nil
		}
	}
	return "", false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Exports returns the sorted, de-duplicated names exported by the library at path.
func Exports(path string) ([]string, error) {
	format, fat, err := detect(path)
	if err != nil {
		return nil, err
	}

	var names []string
	switch format {
	case FormatELF:
		names, err = elfExports(path)
	case FormatPE:
		names, err = peExports(path)
	case FormatMachO:
		names, err = machoExports(path, fat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s symbols from %s: %w", format, path, err)
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}

// Verify checks that the library at path exports every name in required.
// The returned MissingExportsError lists missing names in sorted order.
func Verify(path string, required []string) error {
	if len(required) == 0 {
		return nil
	}
	exported, err := Exports(path)
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range required {
		if _, found := slices.BinarySearch(exported, name); !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &MissingExportsError{Path: path, Missing: slices.Compact(missing)}
	}
	return nil
}

// Verifier adapts Verify to an interface value.
type Verifier struct{}

// NewVerifier creates a new Verifier instance.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks that the library at path exports every name in required.
func (Verifier) Verify(path string, required []string) error {
	return Verify(path, required)
}

func elfExports(path string) ([]string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	if dynamic, err := f.DynamicSymbols(); err == nil {
		for _, sym := range dynamic {
			if sym.Section == elf.SHN_UNDEF || sym.Name == "" {
				continue
			}
			bind := elf.ST_BIND(sym.Info)
			if bind != elf.STB_GLOBAL && bind != elf.STB_WEAK {
				continue
			}
			names = append(names, sym.Name)
		}
	}
	if len(names) > 0 {
		return names, nil
	}

	// Static executables and unlinked objects only carry .symtab.
	static, err := f.Symbols()
	if err != nil {
		return nil, err
	}
	for _, sym := range static {
		if sym.Section == elf.SHN_UNDEF || sym.Name == "" {
			continue
		}
		names = append(names, sym.Name)
	}
	return names, nil
}

func machoExports(path string, fat bool) ([]string, error) {
	if fat {
		ff, err := macho.OpenFat(path)
		if err != nil {
			return nil, err
		}
		defer ff.Close()
		return fatExports(ff), nil
	}

	f, err := macho.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return machoFileExports(f), nil
}

// fatExports returns the names every architecture of a universal binary
// exports, since the host may load any slice.
func fatExports(fat *macho.FatFile) []string {
	var common []string
	for i, arch := range fat.Arches {
		names := machoFileExports(arch.File)
		slices.Sort(names)
		if i == 0 {
			common = slices.Compact(names)
			continue
		}
		common = slices.DeleteFunc(common, func(name string) bool {
			_, found := slices.BinarySearch(names, name)
			return !found
		})
	}
	return common
}

func machoFileExports(f *macho.File) []string {
	if f.Symtab == nil {
		return nil
	}
	const nExt = 0x01
	var names []string
	for _, sym := range f.Symtab.Syms {
		if sym.Type&nExt == 0 || sym.Sect == 0 {
			continue
		}
		// C symbols carry a leading underscore in Mach-O.
		names = append(names, strings.TrimPrefix(sym.Name, "_"))
	}
	return names
}

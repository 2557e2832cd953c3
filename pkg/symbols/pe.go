package symbols

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"
)

// Layout of IMAGE_EXPORT_DIRECTORY.
const (
	exportDirSize        = 40
	exportNumNamesOffset = 24
	exportNamesRVAOffset = 32
	maxExportNames       = 1 << 20
)

func peExports(path string) ([]string, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir, ok := exportDirectory(f)
	if !ok || dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, nil
	}

	header, err := readRVA(f, dir.VirtualAddress, exportDirSize)
	if err != nil {
		return nil, fmt.Errorf("export directory: %w", err)
	}
	numNames := binary.LittleEndian.Uint32(header[exportNumNamesOffset:])
	namesRVA := binary.LittleEndian.Uint32(header[exportNamesRVAOffset:])
	if numNames == 0 {
		return nil, nil
	}
	if numNames > maxExportNames {
		return nil, fmt.Errorf("export directory claims %d names", numNames)
	}

	table, err := readRVA(f, namesRVA, numNames*4)
	if err != nil {
		return nil, fmt.Errorf("export name table: %w", err)
	}

	names := make([]string, 0, numNames)
	for i := uint32(0); i < numNames; i++ {
		nameRVA := binary.LittleEndian.Uint32(table[i*4:])
		name, err := readCString(f, nameRVA)
		if err != nil {
			return nil, fmt.Errorf("export name %d: %w", i, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func exportDirectory(f *pe.File) (pe.DataDirectory, bool) {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes <= pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			return pe.DataDirectory{}, false
		}
		return oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT], true
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes <= pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			return pe.DataDirectory{}, false
		}
		return oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT], true
	default:
		return pe.DataDirectory{}, false
	}
}

func sectionData(f *pe.File, rva uint32) ([]byte, uint32, error) {
	for _, s := range f.Sections {
		size := s.VirtualSize
		if s.Size > size {
			size = s.Size
		}
		if rva < s.VirtualAddress || rva >= s.VirtualAddress+size {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, 0, err
		}
		return data, rva - s.VirtualAddress, nil
	}
	return nil, 0, fmt.Errorf("rva %#x is outside every section", rva)
}

func readRVA(f *pe.File, rva, n uint32) ([]byte, error) {
	data, off, err := sectionData(f, rva)
	if err != nil {
		return nil, err
	}
	if uint64(off)+uint64(n) > uint64(len(data)) {
		return nil, fmt.Errorf("rva %#x+%d runs past section data", rva, n)
	}
	return data[off : off+n], nil
}

func readCString(f *pe.File, rva uint32) (string, error) {
	data, off, err := sectionData(f, rva)
	if err != nil {
		return "", err
	}
	if int(off) >= len(data) {
		return "", fmt.Errorf("rva %#x runs past section data", rva)
	}
	end := bytes.IndexByte(data[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("unterminated name at rva %#x", rva)
	}
	return string(data[off : int(off)+end]), nil
}

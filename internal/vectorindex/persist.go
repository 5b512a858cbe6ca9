package vectorindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"articlerag/internal/domain"
)

// File layout, little endian:
//
//	magic   [8]byte "RAGVIDX1"
//	dim     uint32
//	count   uint64
//	ids     [count]int64
//	vectors [count*dim]float32
//	crc     uint32  IEEE CRC-32 of every preceding byte
var magic = [8]byte{'R', 'A', 'G', 'V', 'I', 'D', 'X', '1'}

const headerSize = 8 + 4 + 8

// Save writes idx to path. The file is written next to path and renamed over
// it, so an interrupted save leaves any previous file intact.
func Save(path string, idx Index) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := encode(f, idx); err != nil {
		f.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync index: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

func encode(w io.Writer, idx Index) error {
	crc := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(w, crc))

	ids := idx.IDs()
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(idx.Dimension())); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(ids))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, ids); err != nil {
		return err
	}
	for _, id := range ids {
		v, ok := idx.Vector(id)
		if !ok {
			return fmt.Errorf("%w: vector for id %d", domain.ErrNotFound, id)
		}
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, crc.Sum32())
}

// Load reads an index written by Save.
func Load(path string) (*FlatL2, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat index: %w", err)
	}
	idx, err := decode(bufio.NewReader(f), st.Size())
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}
	return idx, nil
}

func decode(r io.Reader, size int64) (*FlatL2, error) {
	crc := crc32.NewIEEE()
	tr := io.TeeReader(r, crc)

	var header struct {
		Magic [8]byte
		Dim   uint32
		Count uint64
	}
	if err := binary.Read(tr, binary.LittleEndian, &header); err != nil {
		return nil, corrupt("header", err)
	}
	if header.Magic != magic {
		return nil, corrupt("bad magic", nil)
	}
	if header.Dim == 0 {
		return nil, corrupt("zero dimension", nil)
	}
	perVector := 8 + 4*int64(header.Dim)
	if header.Count > uint64(size/perVector) || headerSize+int64(header.Count)*perVector+4 != size {
		return nil, corrupt(fmt.Sprintf("size %d does not match %d vectors of dimension %d", size, header.Count, header.Dim), nil)
	}

	ids := make([]int64, header.Count)
	if err := binary.Read(tr, binary.LittleEndian, ids); err != nil {
		return nil, corrupt("ids", err)
	}
	data := make([]float32, header.Count*uint64(header.Dim))
	if err := binary.Read(tr, binary.LittleEndian, data); err != nil {
		return nil, corrupt("vectors", err)
	}
	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return nil, corrupt("checksum", err)
	}
	if sum != crc.Sum32() {
		return nil, corrupt("checksum mismatch", nil)
	}

	idx := &FlatL2{
		dimension: int(header.Dim),
		ids:       ids,
		data:      data,
		pos:       make(map[int64]int, len(ids)),
	}
	for i, id := range ids {
		if _, dup := idx.pos[id]; dup {
			return nil, corrupt(fmt.Sprintf("id %d stored twice", id), nil)
		}
		idx.pos[id] = i
	}
	return idx, nil
}

func corrupt(what string, err error) error {
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, what, err)
	}
	return fmt.Errorf("%w: %s", domain.ErrCorrupt, what)
}

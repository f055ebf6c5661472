package engine

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/jackpal/bencode-go"
	"src.rtorc.sh/pkg/target"
)

// ErrBadMetainfo is returned when a torrent file lacks a required field.
var ErrBadMetainfo = errors.New("bad metainfo")

// LoadTorrent reads a metainfo (.torrent) file and returns a Download for it.
// The hash of the download is the uppercase hex SHA-1 of the bencoded info
// dictionary.
func LoadTorrent(r io.Reader) (*Download, error) {
	decoded, err := bencode.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding metainfo: %w", err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: not a dictionary", ErrBadMetainfo)
	}
	info, ok := m["info"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing info dictionary", ErrBadMetainfo)
	}
	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, info); err != nil {
		return nil, fmt.Errorf("encoding info dictionary: %w", err)
	}
	sum := sha1.Sum(buf.Bytes())
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))

	name, ok := info["name"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing name", ErrBadMetainfo)
	}
	type file struct {
		path string
		size int64
	}
	var files []file
	if length, ok := info["length"].(int64); ok {
		files = append(files, file{name, length})
	} else if list, ok := info["files"].([]any); ok {
		for _, f := range list {
			fm, _ := f.(map[string]any)
			length, ok := fm["length"].(int64)
			if !ok {
				return nil, fmt.Errorf("%w: file without length", ErrBadMetainfo)
			}
			parts := []string{name}
			elems, _ := fm["path"].([]any)
			for _, elem := range elems {
				s, _ := elem.(string)
				parts = append(parts, s)
			}
			files = append(files, file{path.Join(parts...), length})
		}
	} else {
		return nil, fmt.Errorf("%w: neither length nor files", ErrBadMetainfo)
	}

	var size int64
	for _, f := range files {
		size += f.size
	}
	d := NewDownload(hash, name, size)
	for _, f := range files {
		d.AddFile(f.path, f.size)
	}
	for _, url := range announceURLs(m) {
		d.AddTracker(url)
	}
	return d, nil
}

// Returns the announce URL followed by the URLs of the announce list, without
// duplicates.
func announceURLs(m map[string]any) []string {
	seen := make(map[string]bool)
	var urls []string
	addURL := func(v any) {
		if s, ok := v.(string); ok && s != "" && !seen[s] {
			seen[s] = true
			urls = append(urls, s)
		}
	}
	addURL(m["announce"])
	tiers, _ := m["announce-list"].([]any)
	for _, tier := range tiers {
		list, _ := tier.([]any)
		for _, url := range list {
			addURL(url)
		}
	}
	return urls
}

// LoadFile loads a torrent file and adds the download to the engine.
func (e *Engine) LoadFile(name string) (target.Download, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := LoadTorrent(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := e.Add(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Package amw provides document-level entry points for parsing AMW markup:
// single readers, strings and files, plus whole filesystems of *.amw files.
// The parser itself lives in the amwparser package.
package amw

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/petbrain/amw/amwparser"
)

const amwExtension = ".amw"

// Parse parses one AMW document from r. file names the source in error
// positions and may be empty.
func Parse(file string, r io.Reader) (amwparser.Value, error) {
	return amwparser.NewParser(amwparser.NewLineSource(r), file).Parse()
}

// ParseString parses one AMW document from a string.
func ParseString(file, input string) (amwparser.Value, error) {
	return Parse(file, strings.NewReader(input))
}

// ParseFile parses the AMW document stored at path.
func ParseFile(path string) (amwparser.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(path, f)
}

// ParseJSON parses r as one pure JSON document.
func ParseJSON(file string, r io.Reader) (amwparser.Value, error) {
	return amwparser.NewParser(amwparser.NewLineSource(r), file).ParseJSON()
}

// ParseJSONString parses a string as one pure JSON document.
func ParseJSONString(file, input string) (amwparser.Value, error) {
	return ParseJSON(file, strings.NewReader(input))
}

// ParsedFile is one parsed document of a DocumentSet.
type ParsedFile struct {
	Path  string
	Value amwparser.Value
}

// DocumentSet is the result of parsing a set of filesystems. Files holds
// the successfully parsed documents in walk order; Errors collects the
// parse errors of the failed ones.
type DocumentSet struct {
	Files  []ParsedFile
	Errors []amwparser.Error
}

// Err returns the collected parse errors as a single error, or nil.
func (d *DocumentSet) Err() error {
	if len(d.Errors) == 0 {
		return nil
	}
	return ParseErrors{Errors: d.Errors}
}

// ParseFilesystems walks a list of filesystems and parses every *.amw file.
// The returned error covers filesystem and I/O problems and duplicate
// contents (see below); parse errors end up in the result's Errors.
//
// Passing the same directory twice is easy to do by accident, so two files
// with identical contents across the filesystems are reported as an error.
func ParseFilesystems(fslst []fs.FS) (*DocumentSet, error) {
	result := &DocumentSet{}
	hashes := make(map[[32]byte]string)

	for fidx, fsys := range fslst {
		// WalkDir is in lexical order, so output is stable
		err := fs.WalkDir(fsys, ".",
			func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				// skip hidden directories, in particular .git
				if strings.HasPrefix(path, ".") && path != "." || strings.Contains(path, "/.") {
					if d.IsDir() && path != "." {
						return fs.SkipDir
					}
					return nil
				}
				if d.IsDir() || filepath.Ext(path) != amwExtension {
					return nil
				}

				buf, err := fs.ReadFile(fsys, path)
				if err != nil {
					return err
				}

				pathDesc := fmt.Sprintf("fs[%d]:%s", fidx, path)
				hash := sha256.Sum256(buf)
				if existing, ok := hashes[hash]; ok {
					return fmt.Errorf("file %s has exact same contents as %s (possibly in different filesystems)",
						pathDesc, existing)
				}
				hashes[hash] = pathDesc

				value, err := ParseString(path, string(buf))
				if err != nil {
					var perr amwparser.Error
					if errors.As(err, &perr) {
						result.Errors = append(result.Errors, perr)
						return nil
					}
					if errors.Is(err, io.EOF) {
						// empty document
						result.Errors = append(result.Errors, amwparser.Error{
							Pos:     amwparser.Pos{File: path, Line: 1},
							Message: "Empty document",
						})
						return nil
					}
					return err
				}
				result.Files = append(result.Files, ParsedFile{Path: path, Value: value})
				return nil
			})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

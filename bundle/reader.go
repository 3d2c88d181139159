package bundle

import (
	"archive/zip"
	"io"

	"github.com/spf13/afero"

	"github.com/bitcraze/cfloader/ferrors"
)

// Reader opens a bundle archive and yields the artifacts its manifest
// describes. A Reader is stateless and safe to reuse across calls.
type Reader struct {
	Fs afero.Fs
}

// NewReader wraps fs. Pass afero.NewOsFs() for real filesystem access or
// afero.NewMemMapFs() in tests.
func NewReader(fs afero.Fs) *Reader {
	return &Reader{Fs: fs}
}

// Read opens path as a ZIP archive and parses its manifest.json. If path is
// not a valid ZIP, it returns (nil, nil): the caller treats that as a raw
// binary and falls back to ReadRaw.
func (r *Reader) Read(path string) ([]Artifact, error) {
	f, err := r.Fs.Open(path)
	if err != nil {
		return nil, ferrors.New(ferrors.KindBundleFormatError, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, ferrors.New(ferrors.KindBundleFormatError, err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, nil
	}

	manifestFile := findZipMember(zr, ManifestName)
	if manifestFile == nil {
		return nil, ferrors.Newf(ferrors.KindBundleFormatError, "archive is missing %s", ManifestName)
	}

	raw, err := readZipMember(manifestFile)
	if err != nil {
		return nil, ferrors.New(ferrors.KindBundleFormatError, err)
	}

	manifest, err := parseManifest(raw)
	if err != nil {
		return nil, ferrors.New(ferrors.KindBundleFormatError, err)
	}

	return artifactsFromManifest(zr, manifest)
}

// ReadRaw reads path verbatim, for the raw-binary fallback path.
func (r *Reader) ReadRaw(path string) ([]byte, error) {
	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return nil, ferrors.New(ferrors.KindBundleFormatError, err)
	}
	return data, nil
}

func artifactsFromManifest(zr *zip.Reader, m *Manifest) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, m.Files.Len())
	for pair := m.Files.Oldest(); pair != nil; pair = pair.Next() {
		name, entry := pair.Key, pair.Value

		member := findZipMember(zr, name)
		if member == nil {
			return nil, ferrors.Newf(ferrors.KindBundleFormatError, "manifest references missing archive member %q", name)
		}

		data, err := readZipMember(member)
		if err != nil {
			return nil, ferrors.New(ferrors.KindBundleFormatError, err)
		}

		artifacts = append(artifacts, Artifact{
			Bytes:  data,
			Target: descriptorFromEntry(entry),
		})
	}
	return artifacts, nil
}

func findZipMember(zr *zip.Reader, name string) *zip.File {
	for _, zf := range zr.File {
		if zf.Name == name {
			return zf
		}
	}
	return nil
}

func readZipMember(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

package imageio

import(
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// A Source is an image loaded from disk
type Source struct {
	Filename string
	Image    image.Image
	Taken    time.Time // From EXIF, if there was any; else the zero time
}

func (s Source)String() string {
	taken := "-"
	if !s.Taken.IsZero() {
		taken = s.Taken.Format("2006-01-02T15:04:05")
	}
	return fmt.Sprintf("%s [%s, %s]", s.Filename, s.Image.Bounds(), taken)
}

var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".bmp":  bmp.Decode,
	".hdr":  rgbe.Decode,
}

func IsImageFile(filename string) bool {
	_, exists := decoders[strings.ToLower(filepath.Ext(filename))]
	return exists
}

func IsConfigFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFilesAndDirs walks the args, loading every image it finds (recursing
// into directories). Config files are not parsed, just returned by name.
// Other files are skipped.
func LoadFilesAndDirs(args ...string) ([]Source, []string, error) {
	srcs := []Source{}
	cfgs := []string{}

	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return nil, nil, fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return nil, nil, fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				s, c, err := LoadFilesAndDirs(filepath.Join(arg, content.Name()))
				if err != nil {
					return nil, nil, fmt.Errorf("load %s: %v", arg, err)
				}
				srcs = append(srcs, s...)
				cfgs = append(cfgs, c...)
			}

		case IsConfigFile(arg):
			cfgs = append(cfgs, arg)

		case IsImageFile(arg):
			src, err := Load(arg)
			if err != nil {
				return nil, nil, fmt.Errorf("loadfile %s: %v", arg, err)
			}
			srcs = append(srcs, src)
		}
	}

	return srcs, cfgs, nil
}

// Load decodes an image file, picking the decoder from the file extension.
func Load(filename string) (Source, error) {
	src := Source{Filename: filename}

	decode, exists := decoders[strings.ToLower(filepath.Ext(filename))]
	if !exists {
		return src, fmt.Errorf("'%s': unsupported image format", filename)
	}

	src.Taken = loadCaptureTime(filename)

	if reader, err := os.Open(filename); err != nil {
		return src, fmt.Errorf("open+r img '%s': %v", filename, err)
	} else {
		defer reader.Close()
		if img, err := decode(reader); err != nil {
			return src, fmt.Errorf("decoding '%s': %v", filename, err)
		} else {
			src.Image = img
		}
	}

	return src, nil
}

// Most formats have no EXIF block at all, so a failure here isn't an error.
func loadCaptureTime(filename string) time.Time {
	reader, err := os.Open(filename)
	if err != nil {
		return time.Time{}
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return time.Time{}
	}
	t, err := ex.DateTime()
	if err != nil {
		return time.Time{}
	}
	return t
}

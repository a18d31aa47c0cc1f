package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/arloliu/bblconv/format"
)

// inputPattern matches SLF log names such as LOG001.TXT or LOG001.TXT.zst.
// The match is case-sensitive, like the recorder's own naming.
var inputPattern = regexp.MustCompile(`^LOG(.*)\.TXT(\.zst|\.s2|\.lz4)?$`)

// TimestampLayout is the time prefix of output names: "2006-01-02  15'04'05  ".
const TimestampLayout = "2006-01-02  15'04'05  "

// Input is one log file selected for conversion.
type Input struct {
	// Path is the file path.
	Path string
	// Name is the base name, e.g. "LOG001.TXT.zst".
	Name string
	// ID is the part between "LOG" and ".TXT", e.g. "001".
	ID string
	// Compression is derived from the suffix after ".TXT".
	Compression format.CompressionType
}

// ParseInputName checks name against the SLF log naming scheme.
func ParseInputName(name string) (Input, bool) {
	m := inputPattern.FindStringSubmatch(name)
	if m == nil {
		return Input{}, false
	}

	return Input{
		Name:        name,
		ID:          m[1],
		Compression: format.CompressionFromExtension(m[2]),
	}, true
}

// Discover lists the SLF logs in dir, sorted by name. Directories are skipped.
func Discover(dir string) ([]Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}

	var inputs []Input
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		in, ok := ParseInputName(e.Name())
		if !ok {
			continue
		}
		in.Path = filepath.Join(dir, e.Name())
		inputs = append(inputs, in)
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name < inputs[j].Name })

	return inputs, nil
}

// InputFromPath describes an explicitly named file. Names outside the LOG*.TXT
// scheme keep their compression suffix and use the remaining base name,
// without extension, as the id.
func InputFromPath(path string) Input {
	name := filepath.Base(path)
	in, ok := ParseInputName(name)
	if !ok {
		ext := filepath.Ext(name)
		in = Input{Name: name, Compression: format.CompressionFromExtension(ext)}
		base := name
		if in.Compression != format.CompressionNone {
			base = strings.TrimSuffix(base, ext)
		}
		in.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	in.Path = path

	return in
}

// OutputName builds the output file name for in:
// "<YYYY-MM-DD  HH'MM'SS  ><prefix><id>.bbl" plus the suffix of the output
// compression.
func OutputName(in Input, prefix string, ts time.Time, compression format.CompressionType) string {
	return ts.Format(TimestampLayout) + prefix + in.ID + ".bbl" + compression.Extension()
}

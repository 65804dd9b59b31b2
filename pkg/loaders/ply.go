// Package loaders reads mesh files into the shapes the geometry package
// instances.
package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// maxListLength bounds the item count of a list property row
const maxListLength = 1 << 16

// PLYData contains the mesh read from a PLY file
type PLYData struct {
	Vertices  []core.Vec3
	Triangles [][3]int
	Colors    []core.RGB // linear per-vertex colors; empty if not present
}

// plyProperty is a property definition from the PLY header
type plyProperty struct {
	Name      string
	Type      string // value type; for lists, the type of the items
	IsList    bool
	CountType string // for lists, the type of the item count
}

// plyElement is an element definition from the PLY header
type plyElement struct {
	Name  string
	Count int
	Props []plyProperty
}

// plyHeader represents the parsed header information from a PLY file
type plyHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []plyElement
}

// LoadPLY loads a triangle mesh from a PLY file
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// ReadPLY reads a PLY stream. Polygons are fan-triangulated; vertex
// positions and colors are kept and every other property is skipped.
func ReadPLY(r io.Reader) (*PLYData, error) {
	br := bufio.NewReader(r)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values valueReader
	switch header.Format {
	case "ascii":
		values = &asciiReader{r: br}
	case "binary_little_endian":
		values = &binaryReader{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryReader{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %q", header.Format)
	}

	data := &PLYData{}
	for _, element := range header.Elements {
		if err := readElement(values, element, data); err != nil {
			return nil, fmt.Errorf("failed to read %s data: %w", element.Name, err)
		}
	}

	if len(data.Colors) > 0 && len(data.Colors) != len(data.Vertices) {
		return nil, fmt.Errorf("colors on %d of %d vertices", len(data.Colors), len(data.Vertices))
	}
	for i, tri := range data.Triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(data.Vertices) {
				return nil, fmt.Errorf("face %d: vertex index %d out of range", i, idx)
			}
		}
	}
	return data, nil
}

// parsePLYHeader parses the header up to and including end_header
func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}
	first := true

	for {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, errors.New("missing end_header")
			}
			return nil, err
		}
		line = strings.TrimSpace(line)

		if first {
			if line != "ply" {
				return nil, errors.New("not a PLY file")
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", line)
			}
			header.Format = parts[1]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property before any element: %q", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			el := &header.Elements[len(header.Elements)-1]
			el.Props = append(el.Props, prop)
		default:
			return nil, fmt.Errorf("unknown header keyword %q", parts[0])
		}
	}

	if header.Format == "" {
		return nil, errors.New("missing format line")
	}
	return header, nil
}

// parsePLYProperty parses the fields after "property"
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, fmt.Errorf("invalid list property definition: %v", parts)
		}
		return plyProperty{IsList: true, CountType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}
	if len(parts) < 2 {
		return plyProperty{}, fmt.Errorf("invalid property definition: %v", parts)
	}
	return plyProperty{Type: parts[0], Name: parts[1]}, nil
}

// readElement reads every row of one element, keeping what PLYData needs
func readElement(values valueReader, element plyElement, data *PLYData) error {
	vertex := element.Name == "vertex"
	face := element.Name == "face"
	hasColor := vertex && hasColorProps(element.Props)

	for i := 0; i < element.Count; i++ {
		var pos core.Vec3
		var color core.RGB

		for _, prop := range element.Props {
			if prop.IsList {
				n, err := values.read(prop.CountType)
				if err != nil {
					return err
				}
				if n < 0 || n != math.Trunc(n) {
					return fmt.Errorf("row %d: invalid list length %v", i, n)
				}
				if n > maxListLength {
					return fmt.Errorf("row %d: list length %v exceeds %d", i, n, maxListLength)
				}
				items := make([]int, int(n))
				for j := range items {
					v, err := values.read(prop.Type)
					if err != nil {
						return err
					}
					items[j] = int(v)
				}
				if face && (prop.Name == "vertex_indices" || prop.Name == "vertex_index") {
					if len(items) < 3 {
						return fmt.Errorf("face %d has %d vertices", i, len(items))
					}
					for k := 1; k+1 < len(items); k++ {
						data.Triangles = append(data.Triangles, [3]int{items[0], items[k], items[k+1]})
					}
				}
				continue
			}

			v, err := values.read(prop.Type)
			if err != nil {
				return err
			}
			if !vertex {
				continue
			}
			switch prop.Name {
			case "x":
				pos[0] = float32(v)
			case "y":
				pos[1] = float32(v)
			case "z":
				pos[2] = float32(v)
			case "red", "r":
				color.R = colorChannel(v, prop.Type)
			case "green", "g":
				color.G = colorChannel(v, prop.Type)
			case "blue", "b":
				color.B = colorChannel(v, prop.Type)
			}
		}

		if vertex {
			data.Vertices = append(data.Vertices, pos)
			if hasColor {
				data.Colors = append(data.Colors, color)
			}
		}
	}
	return nil
}

// hasColorProps reports whether a vertex element stores any color channel.
// Every row of such an element gets a color; missing channels read as zero.
func hasColorProps(props []plyProperty) bool {
	for _, prop := range props {
		switch prop.Name {
		case "red", "r", "green", "g", "blue", "b":
			if !prop.IsList {
				return true
			}
		}
	}
	return false
}

// colorChannel converts a stored channel to linear; integer channels are
// 8-bit sRGB, float channels are taken as linear
func colorChannel(v float64, typ string) float32 {
	switch typ {
	case "float", "float32", "double", "float64":
		return float32(v)
	default:
		return core.LinearFromSRGB(float32(v) / 255)
	}
}

// valueReader reads one scalar of a PLY type
type valueReader interface {
	read(typ string) (float64, error)
}

type asciiReader struct {
	r      *bufio.Reader
	tokens []string
}

func (a *asciiReader) read(typ string) (float64, error) {
	for len(a.tokens) == 0 {
		line, err := a.r.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		a.tokens = strings.Fields(line)
	}

	token := a.tokens[0]
	a.tokens = a.tokens[1:]
	if typeSize(typ) == 0 {
		return 0, fmt.Errorf("unsupported property type %q", typ)
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", typ, token)
	}
	return v, nil
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) read(typ string) (float64, error) {
	size := typeSize(typ)
	if size == 0 {
		return 0, fmt.Errorf("unsupported property type %q", typ)
	}
	p := b.buf[:size]
	if _, err := io.ReadFull(b.r, p); err != nil {
		return 0, err
	}

	switch typ {
	case "char", "int8":
		return float64(int8(p[0])), nil
	case "uchar", "uint8":
		return float64(p[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(p))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(p)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(p))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(p)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(p))), nil
	default:
		return math.Float64frombits(b.order.Uint64(p)), nil
	}
}

// typeSize returns the byte size of a PLY scalar type, or 0 if unknown
func typeSize(typ string) int {
	switch typ {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

package s100

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/oceanobs/tidewriter/internal/iwls"
	"github.com/oceanobs/tidewriter/internal/log"
	"github.com/oceanobs/tidewriter/internal/series"
)

// Producer code used in generated file names.
const producerCode = "CA00"

// DataArrays is the formatted bundle a product hands to its layout writer:
// per data-type value, trend, and position tables, dataset-wide extrema
// over the raw (pre-fill) values, and the ordered list of present
// data-type keys. The key order drives 1-based instance numbering.
type DataArrays struct {
	WL           map[string]*series.Table
	Trend        map[string]*series.Table
	Position     map[string]PositionTable
	Max          float64
	Min          float64
	DatasetTypes []string
}

// Product is the product-specific half of a DCF8 generator. The generic
// Generator drives it through the fixed fetch-format-write sequence.
type Product interface {
	// ProductID is the feature group name, e.g. "WaterLevel".
	ProductID() string
	// FileType is the product number, e.g. "104".
	FileType() string
	// FormatDataArrays reshapes raw station features into the bundle.
	FormatDataArrays(features []iwls.StationFeature) (*DataArrays, error)
	// UpdateFeatureMetadata sets the product-level attributes derived
	// from the bundle. All other product attributes come from the template.
	UpdateFeatureMetadata(f *File, data *DataArrays) error
	// CreateGroups lays the bundle out into instance groups.
	CreateGroups(f *File, data *DataArrays) error
}

// Generator orchestrates one product generation run: load template, format
// arrays, write metadata and groups, encode to the output folder. No
// partial output survives a failed run.
type Generator struct {
	templatePath string
	outputFolder string
	product      Product
}

// NewGenerator returns a generator writing products into outputFolder.
func NewGenerator(templatePath, outputFolder string, product Product) *Generator {
	return &Generator{
		templatePath: templatePath,
		outputFolder: outputFolder,
		product:      product,
	}
}

// Generate runs one generation from raw station features and returns the
// path of the written product file.
func (g *Generator) Generate(features []iwls.StationFeature) (string, error) {
	f, err := LoadTemplate(g.templatePath)
	if err != nil {
		return "", err
	}

	data, err := g.product.FormatDataArrays(features)
	if err != nil {
		return "", fmt.Errorf("formatting data arrays: %w", err)
	}

	if err := g.product.UpdateFeatureMetadata(f, data); err != nil {
		return "", err
	}
	if err := g.product.CreateGroups(f, data); err != nil {
		return "", err
	}

	runID := uuid.New().String()
	name := fmt.Sprintf("%s%s_%s.s%s", g.product.FileType(), producerCode, runID, g.product.FileType())
	path := filepath.Join(g.outputFolder, name)

	if err := f.Save(path); err != nil {
		// A half-written file is invalid; remove it rather than leave it
		// for a consumer to trip over.
		os.Remove(path)
		return "", err
	}

	log.Infow("generated product file",
		"product", g.product.ProductID(),
		"file", path,
		"instances", len(data.DatasetTypes),
		"types", data.DatasetTypes,
	)
	return path, nil
}

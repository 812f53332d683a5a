package tiff

// TIFF 6.0 baseline tags used by this reader.
// Reference: TIFF 6.0 Specification §8 (tag reference)
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagPredictor       = 317
	tagTileWidth       = 322
	tagTileLength      = 323
	tagTileOffsets     = 324
	tagTileByteCounts  = 325
	tagSampleFormat    = 339
)

// GeoTIFF and GDAL extension tags.
// Reference: OGC GeoTIFF 1.1 §7.2 (GeoTIFF tags), GDAL frmts/gtiff
const (
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264
	tagGeoKeyDirectory     = 34735
	tagGeoDoubleParams     = 34736
	tagGeoAsciiParams      = 34737
	tagGDALMetadata        = 42112
	tagGDALNoData          = 42113
)

// Compression schemes.
// Only None, Deflate (both code points) and PackBits are decoded; the rest
// produce ErrUnsupported with the scheme name.
const (
	compressionNone          = 1
	compressionLZW           = 5
	compressionJPEG          = 7
	compressionDeflate       = 8 // "Adobe" deflate, written by GDAL
	compressionDeflateLegacy = 32946
	compressionPackBits      = 32773
)

// SampleFormat values (tag 339).
const (
	sampleFormatUint  = 1
	sampleFormatInt   = 2
	sampleFormatFloat = 3
)

// GeoKey IDs interpreted by this reader.
// Reference: OGC GeoTIFF 1.1 §7.3 (GeoKey reference)
const (
	keyModelType      = 1024 // 1=projected, 2=geographic
	keyRasterType     = 1025 // 1=PixelIsArea, 2=PixelIsPoint
	keyCitation       = 1026
	keyGeographicType = 2048 // geographic CS code (e.g. 4326)
	keyGeogCitation   = 2049
	keyProjectedCS    = 3072 // projected CS code (e.g. 54009)
	keyPCSCitation    = 3073
)

const (
	modelTypeProjected  = 1
	modelTypeGeographic = 2

	rasterTypePixelIsArea  = 1
	rasterTypePixelIsPoint = 2

	// 32767 marks a user-defined CS; the citation keys carry the name.
	csUserDefined = 32767
)

// field types from the TIFF 6.0 specification §2 (Type column)
type fieldType uint16

const (
	typeByte      fieldType = 1
	typeASCII     fieldType = 2
	typeShort     fieldType = 3
	typeLong      fieldType = 4
	typeRational  fieldType = 5
	typeSByte     fieldType = 6
	typeUndefined fieldType = 7
	typeSShort    fieldType = 8
	typeSLong     fieldType = 9
	typeSRational fieldType = 10
	typeFloat     fieldType = 11
	typeDouble    fieldType = 12
)

// typeSizes maps field type to its size in bytes.
var typeSizes = map[fieldType]int{
	typeByte:      1,
	typeASCII:     1,
	typeShort:     2,
	typeLong:      4,
	typeRational:  8,
	typeSByte:     1,
	typeUndefined: 1,
	typeSShort:    2,
	typeSLong:     4,
	typeSRational: 8,
	typeFloat:     4,
	typeDouble:    8,
}

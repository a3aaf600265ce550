package projector

import (
	"regexp"
	"strings"
)

// Kind is the semantic type a column is projected as.
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindNull
	KindBool
	KindInteger
	KindFloat
	KindDouble
	KindDecimal
	KindDate
	KindTime
	KindDateTime
	KindArray
	// KindDynamic columns have no declared type. Each value is written
	// according to its own Go type.
	KindDynamic
)

var kindNames = map[Kind]string{
	KindUnsupported: "unsupported",
	KindText:        "text",
	KindNull:        "null",
	KindBool:        "boolean",
	KindInteger:     "integer",
	KindFloat:       "float",
	KindDouble:      "double",
	KindDecimal:     "decimal",
	KindDate:        "date",
	KindTime:        "time",
	KindDateTime:    "datetime",
	KindArray:       "array",
	KindDynamic:     "dynamic",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unsupported"
}

// typeKinds maps normalized database type names to kinds.
var typeKinds = map[string]Kind{
	// text
	"CHAR":              KindText,
	"CHARACTER":         KindText,
	"VARCHAR":           KindText,
	"CHARACTER VARYING": KindText,
	"VARCHAR2":          KindText,
	"NCHAR":             KindText,
	"NVARCHAR":          KindText,
	"NVARCHAR2":         KindText,
	"TEXT":              KindText,
	"TINYTEXT":          KindText,
	"MEDIUMTEXT":        KindText,
	"LONGTEXT":          KindText,
	"NTEXT":             KindText,
	"BPCHAR":            KindText,
	"STRING":            KindText,
	"LONGVARCHAR":       KindText,
	"LONGNVARCHAR":      KindText,
	"NAME":              KindText,
	"JSON":              KindText,
	"ENUM":              KindText,

	"NULL": KindNull,

	"BOOL":    KindBool,
	"BOOLEAN": KindBool,
	"BIT":     KindBool,

	"TINYINT":   KindInteger,
	"SMALLINT":  KindInteger,
	"MEDIUMINT": KindInteger,
	"INT":       KindInteger,
	"INTEGER":   KindInteger,
	"BIGINT":    KindInteger,
	"INT1":      KindInteger,
	"INT2":      KindInteger,
	"INT4":      KindInteger,
	"INT8":      KindInteger,
	"UTINYINT":  KindInteger,
	"USMALLINT": KindInteger,
	"UINTEGER":  KindInteger,
	"UBIGINT":   KindInteger,
	"HUGEINT":   KindInteger,
	"UHUGEINT":  KindInteger,
	"YEAR":      KindInteger,

	"REAL":   KindFloat,
	"FLOAT4": KindFloat,
	"FLOAT":  KindFloat,

	"DOUBLE":           KindDouble,
	"DOUBLE PRECISION": KindDouble,
	"FLOAT8":           KindDouble,

	"DECIMAL": KindDecimal,
	"NUMERIC": KindDecimal,

	"DATE": KindDate,

	"TIME":                   KindTime,
	"TIMETZ":                 KindTime,
	"TIME WITH TIME ZONE":    KindTime,
	"TIME WITHOUT TIME ZONE": KindTime,

	"TIMESTAMP":                   KindDateTime,
	"TIMESTAMPTZ":                 KindDateTime,
	"DATETIME":                    KindDateTime,
	"TIMESTAMP WITH TIME ZONE":    KindDateTime,
	"TIMESTAMP WITHOUT TIME ZONE": KindDateTime,
	"TIMESTAMP_S":                 KindDateTime,
	"TIMESTAMP_MS":                KindDateTime,
	"TIMESTAMP_NS":                KindDateTime,

	"ARRAY": KindArray,
	"LIST":  KindArray,
}

var (
	arraySuffix = regexp.MustCompile(`\[\d*\]$`)
	typeParams  = regexp.MustCompile(`\([^)]*\)`)
	spaces      = regexp.MustCompile(`\s+`)
)

// ParseKind maps a type name reported by a database driver to a Kind.
// Type parameters ("VARCHAR(20)", "DECIMAL(10,2)") and the UNSIGNED modifier
// are ignored. Names ending in "[]" or "[N]" and PostgreSQL internal array
// names ("_INT4") are arrays. Unknown names are KindUnsupported.
func ParseKind(typeName string) Kind {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if name == "" {
		return KindUnsupported
	}
	if arraySuffix.MatchString(name) || (strings.HasPrefix(name, "_") && len(name) > 1) {
		return KindArray
	}
	return typeKinds[NormalizeTypeName(name)]
}

// NormalizeTypeName upper-cases a type name and strips its parameters and
// sign modifiers so it can be looked up in the kind table.
func NormalizeTypeName(typeName string) string {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	name = typeParams.ReplaceAllString(name, "")
	name = strings.TrimPrefix(name, "UNSIGNED ")
	name = strings.TrimSuffix(name, " UNSIGNED")
	name = strings.TrimSuffix(name, " ZEROFILL")
	return strings.TrimSpace(spaces.ReplaceAllString(name, " "))
}

// ElementTypeName returns the element type of an array type name, or "" when
// the name does not describe an array with a known element type.
func ElementTypeName(typeName string) string {
	name := strings.TrimSpace(typeName)
	if loc := arraySuffix.FindStringIndex(name); loc != nil {
		return strings.TrimSpace(name[:loc[0]])
	}
	if strings.HasPrefix(name, "_") && len(name) > 1 {
		return name[1:]
	}
	return ""
}

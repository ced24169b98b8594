package usda

import (
	"strings"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// roleTypeAliases maps the common USDA "role" type spellings (schema
// sugar over an underlying value type, e.g. color3f/normal3f/vector3f
// are all float3 under the hood) to the canonical registry spelling
// tinyvalue.TypeByName understands. Role names aren't retained
// separately: the spec scopes value identity to TypeId, not to the
// authored role.
var roleTypeAliases = map[string]string{
	"color3f":    "float3",
	"color4f":    "float4",
	"normal3f":   "float3",
	"vector3f":   "float3",
	"point3f":    "float3",
	"texCoord2f": "float2",
	"color3d":    "double3",
	"normal3d":   "double3",
	"vector3d":   "double3",
	"point3d":    "double3",
}

// ResolveTypeName splits a trailing "[]" array marker and resolves
// the remaining scalar spelling to a TypeId. The second return
// indicates whether an array TypeId was produced; the third is false
// if name is not a recognized USDA type spelling at all.
func ResolveTypeName(name string) (tinyvalue.TypeId, bool, bool) {
	isArray := strings.HasSuffix(name, "[]")
	base := strings.TrimSuffix(name, "[]")
	if alias, ok := roleTypeAliases[base]; ok {
		base = alias
	}
	scalar, ok := tinyvalue.TypeByName(base)
	if !ok {
		return tinyvalue.Invalid, false, false
	}
	if !isArray {
		return scalar, false, true
	}
	arrayID, ok := arrayIDFor(scalar)
	return arrayID, true, ok
}

func arrayIDFor(scalar tinyvalue.TypeId) (tinyvalue.TypeId, bool) {
	arrayName := scalar.TypeName() + "[]"
	id, ok := tinyvalue.TypeByName(arrayName)
	return id, ok
}

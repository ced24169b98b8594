package tydra

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/lighttransport/tinyusdz-go/pkg/stage"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
	"github.com/lighttransport/tinyusdz-go/pkg/tydraopts"
)

// materialEnv is the set of collaborators convertShaderInput needs to
// resolve a texture connection: the Stage for attribute evaluation, the
// asset resolver/image loader for texel data, and the RenderScene's
// growing Textures/Images lists, which convertShaderInput appends to
// and indexes into rather than allocating through a separate registry,
// mirroring material_pbr.go's direct append onto the glTF document's
// texture/image slices.
type materialEnv struct {
	stage    *stage.Stage
	resolver stage.AssetResolver
	loader   stage.ImageLoader
	opts     tydraopts.ConvertOptions
	scene    *RenderScene
	diags    *tinyerr.Diagnostics
}

// ConvertMaterial resolves one Material Prim's UsdPreviewSurface shader
// graph into a RenderMaterial, per §4.8's material/shader conversion
// rules. Non-UsdPreviewSurface shader graphs are out of scope: the
// surface shader's channels fall back to their UsdPreviewSurface
// defaults and a diagnostic is recorded.
func ConvertMaterial(s *stage.Stage, prim *tinyprim.Prim, resolver stage.AssetResolver, loader stage.ImageLoader, opts tydraopts.ConvertOptions, scene *RenderScene, diags *tinyerr.Diagnostics) RenderMaterial {
	env := &materialEnv{stage: s, resolver: resolver, loader: loader, opts: opts, scene: scene, diags: diags}

	mat := RenderMaterial{
		Name: prim.ElementName,
		SurfaceShader: UsdPreviewSurfaceShader{
			DiffuseColor:     constParam(tinymath.Vec4f{0.18, 0.18, 0.18, 1}),
			EmissiveColor:    constParam(tinymath.Vec4f{0, 0, 0, 1}),
			SpecularColor:    constParam(tinymath.Vec4f{0, 0, 0, 1}),
			Metallic:         constParam(tinymath.Vec4f{0, 0, 0, 0}),
			Roughness:        constParam(tinymath.Vec4f{0.5, 0.5, 0.5, 0}),
			Opacity:          constParam(tinymath.Vec4f{1, 1, 1, 1}),
			OpacityThreshold: constParam(tinymath.Vec4f{0, 0, 0, 0}),
			IOR:              constParam(tinymath.Vec4f{1.5, 1.5, 1.5, 0}),
		},
	}

	shader := findSurfaceShader(s, prim)
	if shader == nil {
		if diags != nil {
			diags.Warnf(prim.ElementName, fmt.Errorf("material has no UsdPreviewSurface surface shader"))
		}
		return mat
	}

	mat.SurfaceShader.DiffuseColor = env.resolveParam(shader, "inputs:diffuseColor", mat.SurfaceShader.DiffuseColor, "sRGB")
	mat.SurfaceShader.EmissiveColor = env.resolveParam(shader, "inputs:emissiveColor", mat.SurfaceShader.EmissiveColor, "sRGB")
	mat.SurfaceShader.SpecularColor = env.resolveParam(shader, "inputs:specularColor", mat.SurfaceShader.SpecularColor, "sRGB")
	mat.SurfaceShader.Metallic = env.resolveParam(shader, "inputs:metallic", mat.SurfaceShader.Metallic, "raw")
	mat.SurfaceShader.Roughness = env.resolveParam(shader, "inputs:roughness", mat.SurfaceShader.Roughness, "raw")
	mat.SurfaceShader.Clearcoat = env.resolveParam(shader, "inputs:clearcoat", mat.SurfaceShader.Clearcoat, "raw")
	mat.SurfaceShader.ClearcoatRoughness = env.resolveParam(shader, "inputs:clearcoatRoughness", mat.SurfaceShader.ClearcoatRoughness, "raw")
	mat.SurfaceShader.Opacity = env.resolveParam(shader, "inputs:opacity", mat.SurfaceShader.Opacity, "raw")
	mat.SurfaceShader.OpacityThreshold = env.resolveParam(shader, "inputs:opacityThreshold", mat.SurfaceShader.OpacityThreshold, "raw")
	mat.SurfaceShader.IOR = env.resolveParam(shader, "inputs:ior", mat.SurfaceShader.IOR, "raw")
	mat.SurfaceShader.Displacement = env.resolveParam(shader, "inputs:displacement", mat.SurfaceShader.Displacement, "raw")
	mat.SurfaceShader.Occlusion = env.resolveParam(shader, "inputs:occlusion", mat.SurfaceShader.Occlusion, "raw")
	mat.SurfaceShader.Normal = env.resolveParam(shader, "inputs:normal", mat.SurfaceShader.Normal, "raw")

	return mat
}

// findSurfaceShader follows the Material's outputs:surface connection
// to its target Shader Prim, requiring the shader's info:id to be
// "UsdPreviewSurface".
func findSurfaceShader(s *stage.Stage, material *tinyprim.Prim) *tinyprim.Prim {
	attr, ok := material.GetAttribute("outputs:surface")
	if !ok || len(attr.Connections) == 0 {
		return nil
	}
	shaderPrim, err := resolveConnectionPrim(s, material, attr.Connections[0])
	if err != nil {
		return nil
	}
	if idAttr, ok := shaderPrim.GetAttribute("info:id"); ok {
		if v, ok := idAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
			if tok, ok := tinyvalue.As[tinyvalue.Token](v); ok && tok.String() == "UsdPreviewSurface" {
				return shaderPrim
			}
		}
	}
	return nil
}

func resolveConnectionPrim(s *stage.Stage, from *tinyprim.Prim, target tinypath.Path) (*tinyprim.Prim, error) {
	path, ok := tinypath.Parse(target.PrimPart())
	if !ok {
		return nil, fmt.Errorf("invalid connection target %q", target.String())
	}
	return s.FindPrimAtPath(path)
}

// resolveParam implements one UsdPreviewSurface input's constant-vs-
// texture resolution: an authored scalar/color value is used directly;
// a connection to a UsdUVTexture's output channel becomes a texture
// reference, following an optional UsdTransform2d/UsdPrimvarReader_float2
// chain feeding the texture's "inputs:st".
func (env *materialEnv) resolveParam(shader *tinyprim.Prim, inputName string, fallback ShaderParam, colorSpace string) ShaderParam {
	attr, ok := shader.GetAttribute(inputName)
	if !ok {
		return fallback
	}
	if len(attr.Connections) > 0 {
		texPrim, channel, err := resolveTextureConnection(env.stage, attr.Connections[0])
		if err != nil {
			if env.diags != nil {
				env.diags.Warnf(inputName, err)
			}
			return fallback
		}
		if texPrim == nil {
			return fallback
		}
		texID, err := env.convertUVTexture(texPrim, channel, colorSpace)
		if err != nil {
			if env.diags != nil {
				env.diags.Warnf(inputName, err)
			}
			return fallback
		}
		return ShaderParam{IsTexture: true, TextureID: texID}
	}

	v, ok := attr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held)
	if !ok {
		return fallback
	}
	return constParam(valueToVec4f(v))
}

func valueToVec4f(v tinyvalue.Value) tinymath.Vec4f {
	switch v.TypeId() {
	case tinyvalue.Float:
		f, _ := tinyvalue.As[float32](v)
		return tinymath.Vec4f{f, f, f, f}
	case tinyvalue.Vec3f:
		vv, _ := tinyvalue.As[tinymath.Vec3f](v)
		return tinymath.Vec4f{vv[0], vv[1], vv[2], 1}
	case tinyvalue.Vec4f:
		vv, _ := tinyvalue.As[tinymath.Vec4f](v)
		return vv
	default:
		return tinymath.Vec4f{}
	}
}

// resolveTextureConnection follows target to a UsdUVTexture Shader
// Prim, extracting the requested output channel ("rgb", "r", "g", "b",
// or "a") from the connection's property part.
func resolveTextureConnection(s *stage.Stage, target tinypath.Path) (*tinyprim.Prim, string, error) {
	path, ok := tinypath.Parse(target.PrimPart())
	if !ok {
		return nil, "", fmt.Errorf("invalid texture connection target %q", target.String())
	}
	texPrim, err := s.FindPrimAtPath(path)
	if err != nil {
		return nil, "", err
	}
	idAttr, ok := texPrim.GetAttribute("info:id")
	if !ok {
		return nil, "", fmt.Errorf("shader %q has no info:id", texPrim.ElementName)
	}
	v, ok := idAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held)
	if !ok {
		return nil, "", fmt.Errorf("shader %q info:id unset", texPrim.ElementName)
	}
	tok, ok := tinyvalue.As[tinyvalue.Token](v)
	if !ok || tok.String() != "UsdUVTexture" {
		return nil, "", fmt.Errorf("shader %q is not a UsdUVTexture", texPrim.ElementName)
	}
	channel := target.PropPart()
	switch channel {
	case "r", "g", "b", "a", "rgb":
	default:
		channel = "rgb"
	}
	return texPrim, channel, nil
}

// convertUVTexture decodes a UsdUVTexture's bound asset into the
// scene's Images/Textures lists, returning the new texture's index.
// Every call appends new entries; an asset converted earlier is not
// looked up or reused.
func (env *materialEnv) convertUVTexture(texPrim *tinyprim.Prim, channel, colorSpace string) (int, error) {
	fileAttr, ok := texPrim.GetAttribute("inputs:file")
	if !ok {
		return -1, fmt.Errorf("UsdUVTexture %q has no inputs:file", texPrim.ElementName)
	}
	v, ok := fileAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held)
	if !ok {
		return -1, fmt.Errorf("UsdUVTexture %q inputs:file unset", texPrim.ElementName)
	}
	assetPath, ok := tinyvalue.As[string](v)
	if !ok {
		return -1, fmt.Errorf("UsdUVTexture %q inputs:file is not an asset path", texPrim.ElementName)
	}

	imageID, err := env.loadImage(assetPath, colorSpace)
	if err != nil {
		if env.opts.AllowTextureLoadFailure && env.diags != nil {
			env.diags.Warnf(assetPath, fmt.Errorf("%w: %v", tinyerr.ErrTextureLoadFailed, err))
		}
		return -1, err
	}

	wrapS, wrapT := WrapClampToEdge, WrapClampToEdge
	if attr, ok := texPrim.GetAttribute("inputs:wrapS"); ok {
		if v, ok := attr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
			if tok, ok := tinyvalue.As[tinyvalue.Token](v); ok {
				wrapS = ParseWrapMode(tok.String())
			}
		}
	}
	if attr, ok := texPrim.GetAttribute("inputs:wrapT"); ok {
		if v, ok := attr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
			if tok, ok := tinyvalue.As[tinyvalue.Token](v); ok {
				wrapT = ParseWrapMode(tok.String())
			}
		}
	}

	varname, transform := env.resolveTexcoordInput(texPrim)

	tex := UVTexture{
		ImageID:           imageID,
		VarnameUV:         varname,
		OutputChannel:     channel,
		WrapS:             wrapS,
		WrapT:             wrapT,
		TexcoordTransform: transform,
	}
	env.scene.Textures = append(env.scene.Textures, tex)
	return len(env.scene.Textures) - 1, nil
}

// resolveTexcoordInput follows a UsdUVTexture's "inputs:st" connection
// through an optional UsdTransform2d node down to the
// UsdPrimvarReader_float2 naming the mesh primvar, composing the
// transform's scale/rotation/translation into a single 2D matrix
// (S*R*T, per §4.8) if a UsdTransform2d is present.
func (env *materialEnv) resolveTexcoordInput(texPrim *tinyprim.Prim) (string, tinymath.Matrix3d) {
	identity := tinymath.Identity3d()
	attr, ok := texPrim.GetAttribute("inputs:st")
	if !ok || len(attr.Connections) == 0 {
		return "st", identity
	}
	node, err := resolveConnectionPrim(env.stage, texPrim, attr.Connections[0])
	if err != nil || node == nil {
		return "st", identity
	}
	idAttr, ok := node.GetAttribute("info:id")
	if !ok {
		return "st", identity
	}
	v, ok := idAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held)
	if !ok {
		return "st", identity
	}
	tok, ok := tinyvalue.As[tinyvalue.Token](v)
	if !ok {
		return "st", identity
	}

	switch tok.String() {
	case "UsdPrimvarReader_float2":
		varname := "st"
		if vnAttr, ok := node.GetAttribute("inputs:varname"); ok {
			if vv, ok := vnAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
				if s, ok := tinyvalue.As[string](vv); ok {
					varname = s
				} else if t, ok := tinyvalue.As[tinyvalue.Token](vv); ok {
					varname = t.String()
				}
			}
		}
		return varname, identity
	case "UsdTransform2d":
		scale := tinymath.Vec2f{1, 1}
		rotation := float32(0)
		translation := tinymath.Vec2f{0, 0}
		if a, ok := node.GetAttribute("inputs:scale"); ok {
			if vv, ok := a.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
				if s, ok := tinyvalue.As[tinymath.Vec2f](vv); ok {
					scale = s
				}
			}
		}
		if a, ok := node.GetAttribute("inputs:rotation"); ok {
			if vv, ok := a.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
				if r, ok := tinyvalue.As[float32](vv); ok {
					rotation = r
				}
			}
		}
		if a, ok := node.GetAttribute("inputs:translation"); ok {
			if vv, ok := a.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
				if t, ok := tinyvalue.As[tinymath.Vec2f](vv); ok {
					translation = t
				}
			}
		}
		varname, _ := env.resolveTexcoordInput(node)
		return varname, transform2d(scale, rotation, translation)
	default:
		return "st", identity
	}
}

// transform2d composes scale, then rotation, then translation into a
// single 3x3 homogeneous 2D matrix, matching UsdTransform2d's
// documented S*R*T composition order.
func transform2d(scale tinymath.Vec2f, rotationDeg float32, translation tinymath.Vec2f) tinymath.Matrix3d {
	s := tinymath.Vec2d{float64(scale[0]), float64(scale[1])}
	t := tinymath.Vec2d{float64(translation[0]), float64(translation[1])}
	return tinymath.NewTexcoordTransform(s, float64(rotationDeg), t)
}

// loadImage resolves and decodes assetPath into the scene's Images
// list, generating mip levels via golang.org/x/image/draw's bilinear
// scaler when ImageHints.WantMips is requested, mirroring the
// teacher's image/draw decode-then-convert step but widened from a
// single RGBA decode to a full mip chain.
func (env *materialEnv) loadImage(assetPath, colorSpace string) (int, error) {
	resolved, err := env.resolver.Resolve(assetPath)
	if err != nil {
		return -1, err
	}
	data, err := env.resolver.Read(resolved)
	if err != nil {
		return -1, err
	}
	linearize := env.opts.LinearizeColorSpace && colorSpace == "sRGB"
	hints := stage.ImageHints{ColorSpace: colorSpace, WantMips: env.opts.GenerateMipmaps}
	img, err := env.loader.Load(data, hints)
	if err != nil {
		return -1, err
	}

	base := TextureImage{Width: img.Width, Height: img.Height, Channels: img.Channels, ColorSpace: colorSpace}
	if linearize && env.opts.PreserveTexelBitdepth {
		lin := linearizeSRGB(img.Pixels, img.Channels)
		base.Pixels8 = make([]uint8, len(lin))
		for i, c := range lin {
			base.Pixels8[i] = uint8(c*255 + 0.5)
		}
	} else if linearize {
		base.PixelsF32 = linearizeSRGB(img.Pixels, img.Channels)
	} else {
		base.Pixels8 = img.Pixels
	}
	env.scene.Images = append(env.scene.Images, base)
	baseID := len(env.scene.Images) - 1

	if env.opts.GenerateMipmaps && img.Channels == 4 {
		generateMips(env.scene, img, colorSpace)
	}
	return baseID, nil
}

func linearizeSRGB(pixels []byte, channels int) []float32 {
	out := make([]float32, len(pixels))
	for i, b := range pixels {
		c := float32(b) / 255
		if channels == 4 && i%4 == 3 {
			out[i] = c // alpha stays linear
			continue
		}
		out[i] = srgbToLinear(c)
	}
	return out
}

func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

// generateMips appends successively half-sized images to the scene's
// Images list using golang.org/x/image/draw.BiLinear, stopping at 1x1.
func generateMips(scene *RenderScene, img stage.Image, colorSpace string) {
	src := &image.RGBA{Pix: img.Pixels, Stride: img.Width * 4, Rect: image.Rect(0, 0, img.Width, img.Height)}
	w, h := img.Width, img.Height
	for w > 1 || h > 1 {
		w = maxInt(1, w/2)
		h = maxInt(1, h/2)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		scene.Images = append(scene.Images, TextureImage{Width: w, Height: h, Channels: 4, ColorSpace: colorSpace, Pixels8: dst.Pix})
		src = dst
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

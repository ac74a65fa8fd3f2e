package gpu

// Enum is a graphics API constant. The values match the OpenGL tokens so the
// binding adapter can pass them through unchanged.
type Enum uint32

// Buffer targets and usages
const (
	ArrayBuffer        Enum = 0x8892
	ElementArrayBuffer Enum = 0x8893
	UniformBuffer      Enum = 0x8A11
	StaticDraw         Enum = 0x88E4
	DynamicDraw        Enum = 0x88E8
)

// Texture targets
const (
	Texture2D               Enum = 0x0DE1
	Texture3D               Enum = 0x806F
	Texture2DArray          Enum = 0x8C1A
	TextureCubeMap          Enum = 0x8513
	TextureCubeMapPositiveX Enum = 0x8515
	TextureCubeMapNegativeX Enum = 0x8516
	TextureCubeMapPositiveY Enum = 0x8517
	TextureCubeMapNegativeY Enum = 0x8518
	TextureCubeMapPositiveZ Enum = 0x8519
	TextureCubeMapNegativeZ Enum = 0x851A
)

// Pixel formats and internal formats
const (
	Red            Enum = 0x1903
	RG             Enum = 0x8227
	RGB            Enum = 0x1907
	RGBA           Enum = 0x1908
	DepthComponent Enum = 0x1902

	R8      Enum = 0x8229
	RG8     Enum = 0x822B
	RGB8    Enum = 0x8051
	RGBA8   Enum = 0x8058
	R16F    Enum = 0x822D
	RG16F   Enum = 0x822F
	RGB16F  Enum = 0x881B
	RGBA16F Enum = 0x881A
	R32F    Enum = 0x822E
	RG32F   Enum = 0x8230
	RGB32F  Enum = 0x8815
	RGBA32F Enum = 0x8814

	DepthComponent16  Enum = 0x81A5
	DepthComponent24  Enum = 0x81A6
	DepthComponent32F Enum = 0x8CAC
)

// Component types
const (
	UnsignedByte  Enum = 0x1401
	UnsignedShort Enum = 0x1403
	UnsignedInt   Enum = 0x1405
	Float         Enum = 0x1406
	HalfFloat     Enum = 0x140B
)

// Texture parameters
const (
	TextureMagFilter   Enum = 0x2800
	TextureMinFilter   Enum = 0x2801
	TextureWrapS       Enum = 0x2802
	TextureWrapT       Enum = 0x2803
	TextureWrapR       Enum = 0x8072
	TextureBaseLevel   Enum = 0x813C
	TextureMaxLevel    Enum = 0x813D
	TextureCompareMode Enum = 0x884C
	TextureCompareFunc Enum = 0x884D

	Nearest              Enum = 0x2600
	Linear               Enum = 0x2601
	NearestMipmapNearest Enum = 0x2700
	LinearMipmapNearest  Enum = 0x2701
	NearestMipmapLinear  Enum = 0x2702
	LinearMipmapLinear   Enum = 0x2703

	Repeat              Enum = 0x2901
	ClampToEdge         Enum = 0x812F
	MirroredRepeat      Enum = 0x8370
	None                Enum = 0
	CompareRefToTexture Enum = 0x884E
)

// Framebuffers
const (
	Framebuffer         Enum = 0x8D40
	ReadFramebuffer     Enum = 0x8CA8
	DrawFramebuffer     Enum = 0x8CA9
	Renderbuffer        Enum = 0x8D41
	ColorAttachment0    Enum = 0x8CE0
	DepthAttachment     Enum = 0x8D00
	FramebufferComplete Enum = 0x8CD5

	FramebufferUndefined                   Enum = 0x8219
	FramebufferIncompleteAttachment        Enum = 0x8CD6
	FramebufferIncompleteMissingAttachment Enum = 0x8CD7
	FramebufferIncompleteDrawBuffer        Enum = 0x8CDB
	FramebufferIncompleteReadBuffer        Enum = 0x8CDC
	FramebufferUnsupported                 Enum = 0x8CDD
	FramebufferIncompleteMultisample       Enum = 0x8D56
	FramebufferIncompleteLayerTargets      Enum = 0x8DA8
)

// Shader stages
const (
	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31
)

// Capabilities
const (
	CullFaceCap    Enum = 0x0B44
	DepthTestCap   Enum = 0x0B71
	BlendCap       Enum = 0x0BE2
	ScissorTestCap Enum = 0x0C11
)

// Comparison functions
const (
	Never    Enum = 0x0200
	Less     Enum = 0x0201
	Equal    Enum = 0x0202
	Lequal   Enum = 0x0203
	Greater  Enum = 0x0204
	Notequal Enum = 0x0205
	Gequal   Enum = 0x0206
	Always   Enum = 0x0207
)

// Faces
const (
	Front        Enum = 0x0404
	Back         Enum = 0x0405
	FrontAndBack Enum = 0x0408
)

// Blending
const (
	Zero                Enum = 0
	One                 Enum = 1
	SrcColor            Enum = 0x0300
	OneMinusSrcColor    Enum = 0x0301
	SrcAlpha            Enum = 0x0302
	OneMinusSrcAlpha    Enum = 0x0303
	DstAlpha            Enum = 0x0304
	OneMinusDstAlpha    Enum = 0x0305
	DstColor            Enum = 0x0306
	OneMinusDstColor    Enum = 0x0307
	FuncAdd             Enum = 0x8006
	FuncMin             Enum = 0x8007
	FuncMax             Enum = 0x8008
	FuncSubtract        Enum = 0x800A
	FuncReverseSubtract Enum = 0x800B
)

// Primitives
const (
	Points    Enum = 0x0000
	Lines     Enum = 0x0001
	Triangles Enum = 0x0004
)

// Clear masks
const (
	DepthBufferBit Enum = 0x00000100
	ColorBufferBit Enum = 0x00004000
)

// Errors
const (
	NoError          Enum = 0
	InvalidEnum      Enum = 0x0500
	InvalidValue     Enum = 0x0501
	InvalidOperation Enum = 0x0502
	OutOfMemory      Enum = 0x0505
)

// CubeMapSides lists the six cube map face targets in attachment order.
var CubeMapSides = [6]Enum{
	TextureCubeMapPositiveX,
	TextureCubeMapNegativeX,
	TextureCubeMapPositiveY,
	TextureCubeMapNegativeY,
	TextureCubeMapPositiveZ,
	TextureCubeMapNegativeZ,
}

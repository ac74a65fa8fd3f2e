// Package gputest provides an in-memory gpu.Context for tests.
//
// The fake tracks object lifetimes, bindings, texture and renderbuffer storage,
// uniforms and draw calls. Clears write into the attached storage and
// ReadPixels reads it back, so render target round trips can be checked
// without a driver. Triangles are not rasterized.
package gputest

import (
	"Prism3D/internal/gpu"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Surface is one 2D image: RGBA float32 per pixel, depth stored in R.
type Surface struct {
	Width, Height int32
	Pix           []float32
}

func newSurface(w, h int32) *Surface {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Surface{Width: w, Height: h, Pix: make([]float32, int(w*h)*4)}
}

// At returns the RGBA value of pixel (x, y).
func (s *Surface) At(x, y int32) [4]float32 {
	i := int(y*s.Width+x) * 4
	return [4]float32{s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3]}
}

func (s *Surface) fill(v [4]float32, mask [4]bool) {
	for i := 0; i < len(s.Pix); i += 4 {
		for c := 0; c < 4; c++ {
			if mask[c] {
				s.Pix[i+c] = v[c]
			}
		}
	}
}

// Texture is the fake storage behind a texture name.
type Texture struct {
	Target            gpu.Enum
	InternalFormat    gpu.Enum
	Width             int32
	Height            int32
	Depth             int32
	Params            map[gpu.Enum]int32
	MipmapGenerations int
	Levels            map[int32][]*Surface
}

// Level returns the surface of one layer of a mip level, or nil.
func (t *Texture) Level(level, layer int32) *Surface {
	layers := t.Levels[level]
	if int(layer) >= len(layers) || layer < 0 {
		return nil
	}
	return layers[layer]
}

func (t *Texture) allocate(level, w, h, d int32) []*Surface {
	layers := make([]*Surface, d)
	for i := range layers {
		layers[i] = newSurface(w, h)
	}
	t.Levels[level] = layers
	if level == 0 {
		t.Width, t.Height, t.Depth = w, h, d
	}
	return layers
}

// Attachment is one framebuffer attachment point.
type Attachment struct {
	Texture      uint32
	Renderbuffer uint32
	Level        int32
	Layer        int32
}

// Framebuffer is the fake state of a framebuffer object.
type Framebuffer struct {
	Attachments map[gpu.Enum]Attachment
	DrawBuffers []gpu.Enum
	ReadBuffer  gpu.Enum
}

// Renderbuffer is the fake storage behind a renderbuffer name.
type Renderbuffer struct {
	InternalFormat gpu.Enum
	Surface        *Surface
}

type shader struct {
	stage    gpu.Enum
	source   string
	compiled bool
	log      string
}

// Program is the fake state of a linked program.
type Program struct {
	Vertex    string
	Fragment  string
	Linked    bool
	Log       string
	Uniforms  map[string]any
	Blocks    map[string]uint32
	blocks    map[string]uint32
	shaders   []uint32
	locations map[string]int32
	names     map[int32]string
	attribs   map[string]int32
}

// Buffer is the fake state of a buffer object.
type Buffer struct {
	Target  gpu.Enum
	Size    int
	Uploads int
	Data    any
}

// DrawCall records one draw together with the state it was issued under.
type DrawCall struct {
	Mode        gpu.Enum
	First       int32
	Count       int32
	Instances   int32
	Indexed     bool
	Program     uint32
	Framebuffer uint32
	Viewport    [4]int32
	DepthTest   bool
	DepthFunc   gpu.Enum
	DepthMask   bool
	ColorMask   [4]bool
	Blend       bool
	Cull        bool
	Textures    map[uint32]uint32
}

// Fake implements gpu.Context in memory.
type Fake struct {
	// CompileFails returns a non-empty log to make a shader with that source
	// fail to compile.
	CompileFails func(source string) string
	// LinkFails returns a non-empty log to make a program fail to link.
	LinkFails func(vertex, fragment string) string
	// FramebufferStatus overrides CheckFramebufferStatus when set.
	FramebufferStatus func(id uint32) gpu.Enum
	// FailCreate makes the create call for a kind fail.
	FailCreate map[gpu.Kind]bool

	CompileCount  int
	LinkCount     int
	DoubleDeletes int
	Draws         []DrawCall

	nextID        uint32
	live          map[gpu.Kind]map[uint32]bool
	buffers       map[uint32]*Buffer
	textures      map[uint32]*Texture
	framebuffers  map[uint32]*Framebuffer
	renderbuffers map[uint32]*Renderbuffer
	shaders       map[uint32]*shader
	programs      map[uint32]*Program

	screenColor *Surface
	screenDepth *Surface

	drawFramebuffer uint32
	readFramebuffer uint32
	renderbuffer    uint32
	program         uint32
	vertexArray     uint32
	activeUnit      uint32
	boundTextures   map[uint32]map[gpu.Enum]uint32
	boundBuffers    map[gpu.Enum]uint32
	blockBindings   map[uint32]uint32
	viewport        [4]int32
	scissor         [4]int32
	enabled         map[gpu.Enum]bool
	depthFunc       gpu.Enum
	depthMask       bool
	colorMask       [4]bool
	cullFace        gpu.Enum
	clearColor      [4]float32
	clearDepth      float64
	enabledAttribs  map[uint32]bool
}

var _ gpu.Context = (*Fake)(nil)

// New returns a fake whose default framebuffer is width by height pixels.
func New(width, height int32) *Fake {
	f := &Fake{
		FailCreate:     map[gpu.Kind]bool{},
		live:           map[gpu.Kind]map[uint32]bool{},
		buffers:        map[uint32]*Buffer{},
		textures:       map[uint32]*Texture{},
		framebuffers:   map[uint32]*Framebuffer{},
		renderbuffers:  map[uint32]*Renderbuffer{},
		shaders:        map[uint32]*shader{},
		programs:       map[uint32]*Program{},
		boundTextures:  map[uint32]map[gpu.Enum]uint32{},
		boundBuffers:   map[gpu.Enum]uint32{},
		blockBindings:  map[uint32]uint32{},
		enabled:        map[gpu.Enum]bool{},
		enabledAttribs: map[uint32]bool{},
		depthFunc:      gpu.Less,
		depthMask:      true,
		colorMask:      [4]bool{true, true, true, true},
		cullFace:       gpu.Back,
		clearDepth:     1,
		viewport:       [4]int32{0, 0, width, height},
	}
	f.screenColor = newSurface(width, height)
	f.screenDepth = newSurface(width, height)
	return f
}

func (f *Fake) create(kind gpu.Kind) (uint32, error) {
	if f.FailCreate[kind] {
		return 0, gpu.CreationError(kind)
	}
	f.nextID++
	if f.live[kind] == nil {
		f.live[kind] = map[uint32]bool{}
	}
	f.live[kind][f.nextID] = true
	return f.nextID, nil
}

func (f *Fake) remove(kind gpu.Kind, id uint32) bool {
	if id == 0 {
		return false
	}
	if !f.live[kind][id] {
		f.DoubleDeletes++
		return false
	}
	delete(f.live[kind], id)
	return true
}

// LiveCount returns how many objects of a kind currently exist.
func (f *Fake) LiveCount(kind gpu.Kind) int { return len(f.live[kind]) }

// IsLive reports whether id names an existing object of kind.
func (f *Fake) IsLive(kind gpu.Kind, id uint32) bool { return f.live[kind][id] }

// Texture returns the storage of a texture name.
func (f *Fake) Texture(id uint32) *Texture { return f.textures[id] }

// Framebuffer returns the state of a framebuffer name.
func (f *Fake) Framebuffer(id uint32) *Framebuffer { return f.framebuffers[id] }

// Program returns the state of a program name.
func (f *Fake) Program(id uint32) *Program { return f.programs[id] }

// Buffer returns the state of a buffer name.
func (f *Fake) Buffer(id uint32) *Buffer { return f.buffers[id] }

// BoundFramebuffer returns the current draw framebuffer.
func (f *Fake) BoundFramebuffer() uint32 { return f.drawFramebuffer }

// BoundProgram returns the program in use.
func (f *Fake) BoundProgram() uint32 { return f.program }

// CurrentViewport returns the last Viewport call.
func (f *Fake) CurrentViewport() [4]int32 { return f.viewport }

// Screen returns the default framebuffer color surface.
func (f *Fake) Screen() *Surface { return f.screenColor }

// IsEnabled reports a capability toggled with Enable/Disable.
func (f *Fake) IsEnabled(capability gpu.Enum) bool { return f.enabled[capability] }

// ResetDraws forgets recorded draw calls.
func (f *Fake) ResetDraws() { f.Draws = nil }

// Buffers

func (f *Fake) CreateBuffer() (uint32, error) {
	id, err := f.create(gpu.KindBuffer)
	if err == nil {
		f.buffers[id] = &Buffer{}
	}
	return id, err
}

func (f *Fake) DeleteBuffer(id uint32) {
	if f.remove(gpu.KindBuffer, id) {
		delete(f.buffers, id)
	}
}

func (f *Fake) BindBuffer(target gpu.Enum, id uint32) { f.boundBuffers[target] = id }

func (f *Fake) BufferData(target gpu.Enum, size int, data any, usage gpu.Enum) {
	if b := f.buffers[f.boundBuffers[target]]; b != nil {
		b.Target = target
		b.Size = size
		b.Data = data
		b.Uploads++
	}
}

func (f *Fake) BindBufferBase(target gpu.Enum, index, id uint32) {
	f.boundBuffers[target] = id
	f.blockBindings[index] = id
}

// UniformBufferAt returns the buffer bound to a uniform block binding point.
func (f *Fake) UniformBufferAt(binding uint32) *Buffer { return f.buffers[f.blockBindings[binding]] }

// Vertex arrays

func (f *Fake) CreateVertexArray() (uint32, error) { return f.create(gpu.KindVertexArray) }
func (f *Fake) DeleteVertexArray(id uint32)        { f.remove(gpu.KindVertexArray, id) }
func (f *Fake) BindVertexArray(id uint32)          { f.vertexArray = id }

func (f *Fake) EnableVertexAttribArray(location uint32)  { f.enabledAttribs[location] = true }
func (f *Fake) DisableVertexAttribArray(location uint32) { delete(f.enabledAttribs, location) }

func (f *Fake) VertexAttribPointer(location uint32, size int32, typ gpu.Enum, normalized bool, stride int32, offset int) {
}

func (f *Fake) VertexAttribDivisor(location, divisor uint32) {}

// Textures

func (f *Fake) CreateTexture() (uint32, error) {
	id, err := f.create(gpu.KindTexture)
	if err == nil {
		f.textures[id] = &Texture{Params: map[gpu.Enum]int32{}, Levels: map[int32][]*Surface{}}
	}
	return id, err
}

func (f *Fake) DeleteTexture(id uint32) {
	if f.remove(gpu.KindTexture, id) {
		delete(f.textures, id)
	}
}

func (f *Fake) ActiveTexture(unit uint32) { f.activeUnit = unit }

func (f *Fake) BindTexture(target gpu.Enum, id uint32) {
	if f.boundTextures[f.activeUnit] == nil {
		f.boundTextures[f.activeUnit] = map[gpu.Enum]uint32{}
	}
	f.boundTextures[f.activeUnit][target] = id
	if t := f.textures[id]; t != nil && t.Target == 0 {
		t.Target = target
	}
}

func cubeSide(target gpu.Enum) (int32, bool) {
	for i, side := range gpu.CubeMapSides {
		if side == target {
			return int32(i), true
		}
	}
	return 0, false
}

func (f *Fake) bound(target gpu.Enum) (*Texture, int32) {
	if side, ok := cubeSide(target); ok {
		return f.textures[f.boundTextures[f.activeUnit][gpu.TextureCubeMap]], side
	}
	return f.textures[f.boundTextures[f.activeUnit][target]], 0
}

func (f *Fake) TexImage2D(target gpu.Enum, level int32, internalFormat gpu.Enum, width, height int32, format, typ gpu.Enum, data any) {
	t, layer := f.bound(target)
	if t == nil {
		return
	}
	t.InternalFormat = internalFormat
	layers := t.Levels[level]
	depth := int32(1)
	if _, ok := cubeSide(target); ok {
		depth = 6
	}
	if len(layers) != int(depth) || layers[0].Width != width || layers[0].Height != height {
		layers = t.allocate(level, width, height, depth)
	}
	if level == 0 {
		t.Width, t.Height, t.Depth = width, height, depth
	}
	upload(layers[layer], 0, 0, width, height, format, data, 0)
}

func (f *Fake) TexImage3D(target gpu.Enum, level int32, internalFormat gpu.Enum, width, height, depth int32, format, typ gpu.Enum, data any) {
	t, _ := f.bound(target)
	if t == nil {
		return
	}
	t.InternalFormat = internalFormat
	layers := t.allocate(level, width, height, depth)
	for z := range layers {
		upload(layers[z], 0, 0, width, height, format, data, z*int(width*height))
	}
}

func (f *Fake) TexSubImage2D(target gpu.Enum, level, x, y, width, height int32, format, typ gpu.Enum, data any) {
	t, layer := f.bound(target)
	if t == nil {
		return
	}
	if s := t.Level(level, layer); s != nil {
		upload(s, x, y, width, height, format, data, 0)
	}
}

func (f *Fake) TexSubImage3D(target gpu.Enum, level, x, y, z, width, height, depth int32, format, typ gpu.Enum, data any) {
	t, _ := f.bound(target)
	if t == nil {
		return
	}
	for d := int32(0); d < depth; d++ {
		if s := t.Level(level, z+d); s != nil {
			upload(s, x, y, width, height, format, data, int(d*width*height))
		}
	}
}

func (f *Fake) TexParameteri(target, name gpu.Enum, value int32) {
	if t, _ := f.bound(target); t != nil {
		t.Params[name] = value
	}
}

func (f *Fake) GenerateMipmap(target gpu.Enum) {
	t, _ := f.bound(target)
	if t == nil || len(t.Levels[0]) == 0 {
		return
	}
	t.MipmapGenerations++
	w, h := t.Width, t.Height
	for level := int32(1); w > 1 || h > 1; level++ {
		w, h = max(w/2, 1), max(h/2, 1)
		d := t.Depth
		if target == gpu.Texture3D {
			d = max(d>>level, 1)
		}
		if t.Levels[level] == nil {
			t.allocate(level, w, h, d)
		}
	}
}

func components(format gpu.Enum) int {
	switch format {
	case gpu.Red, gpu.DepthComponent:
		return 1
	case gpu.RG:
		return 2
	case gpu.RGB:
		return 3
	}
	return 4
}

// upload copies pixels starting at element offset (in pixels) of data into s.
func upload(s *Surface, x, y, w, h int32, format gpu.Enum, data any, offset int) {
	if data == nil {
		return
	}
	n := components(format)
	value := func(i int) (float32, bool) {
		switch d := data.(type) {
		case []float32:
			if i < len(d) {
				return d[i], true
			}
		case []uint8:
			if i < len(d) {
				return float32(d[i]) / 255, true
			}
		case []uint16:
			if i < len(d) {
				return float32(d[i]) / 65535, true
			}
		}
		return 0, false
	}
	for row := int32(0); row < h; row++ {
		for col := int32(0); col < w; col++ {
			px, py := x+col, y+row
			if px >= s.Width || py >= s.Height {
				continue
			}
			src := (offset + int(row*w+col)) * n
			dst := int(py*s.Width+px) * 4
			pixel := [4]float32{0, 0, 0, 1}
			for c := 0; c < n; c++ {
				v, ok := value(src + c)
				if !ok {
					return
				}
				pixel[c] = v
			}
			copy(s.Pix[dst:dst+4], pixel[:])
		}
	}
}

// Framebuffers

func (f *Fake) CreateFramebuffer() (uint32, error) {
	id, err := f.create(gpu.KindFramebuffer)
	if err == nil {
		f.framebuffers[id] = &Framebuffer{
			Attachments: map[gpu.Enum]Attachment{},
			DrawBuffers: []gpu.Enum{gpu.ColorAttachment0},
			ReadBuffer:  gpu.ColorAttachment0,
		}
	}
	return id, err
}

func (f *Fake) DeleteFramebuffer(id uint32) {
	if f.remove(gpu.KindFramebuffer, id) {
		delete(f.framebuffers, id)
		if f.drawFramebuffer == id {
			f.drawFramebuffer = 0
		}
		if f.readFramebuffer == id {
			f.readFramebuffer = 0
		}
	}
}

func (f *Fake) BindFramebuffer(target gpu.Enum, id uint32) {
	switch target {
	case gpu.DrawFramebuffer:
		f.drawFramebuffer = id
	case gpu.ReadFramebuffer:
		f.readFramebuffer = id
	default:
		f.drawFramebuffer, f.readFramebuffer = id, id
	}
}

func (f *Fake) targetFramebuffer(target gpu.Enum) *Framebuffer {
	if target == gpu.ReadFramebuffer {
		return f.framebuffers[f.readFramebuffer]
	}
	return f.framebuffers[f.drawFramebuffer]
}

func (f *Fake) FramebufferTexture2D(target, attachment, textureTarget gpu.Enum, texture uint32, level int32) {
	fb := f.targetFramebuffer(target)
	if fb == nil {
		return
	}
	side, _ := cubeSide(textureTarget)
	fb.Attachments[attachment] = Attachment{Texture: texture, Level: level, Layer: side}
}

func (f *Fake) FramebufferTextureLayer(target, attachment gpu.Enum, texture uint32, level, layer int32) {
	if fb := f.targetFramebuffer(target); fb != nil {
		fb.Attachments[attachment] = Attachment{Texture: texture, Level: level, Layer: layer}
	}
}

func (f *Fake) FramebufferRenderbuffer(target, attachment, renderbufferTarget gpu.Enum, renderbuffer uint32) {
	if fb := f.targetFramebuffer(target); fb != nil {
		fb.Attachments[attachment] = Attachment{Renderbuffer: renderbuffer}
	}
}

func (f *Fake) surfaceOf(a Attachment) *Surface {
	if a.Renderbuffer != 0 {
		if rb := f.renderbuffers[a.Renderbuffer]; rb != nil {
			return rb.Surface
		}
		return nil
	}
	if t := f.textures[a.Texture]; t != nil {
		return t.Level(a.Level, a.Layer)
	}
	return nil
}

func (f *Fake) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	id := f.drawFramebuffer
	if target == gpu.ReadFramebuffer {
		id = f.readFramebuffer
	}
	if f.FramebufferStatus != nil {
		if status := f.FramebufferStatus(id); status != 0 {
			return status
		}
	}
	if id == 0 {
		return gpu.FramebufferComplete
	}
	fb := f.framebuffers[id]
	if fb == nil {
		return gpu.FramebufferUndefined
	}
	if len(fb.Attachments) == 0 {
		return gpu.FramebufferIncompleteMissingAttachment
	}
	var w, h int32
	for _, a := range fb.Attachments {
		s := f.surfaceOf(a)
		if s == nil {
			return gpu.FramebufferIncompleteAttachment
		}
		if w != 0 && (s.Width != w || s.Height != h) {
			return gpu.FramebufferIncompleteAttachment
		}
		w, h = s.Width, s.Height
	}
	for _, db := range fb.DrawBuffers {
		if _, ok := fb.Attachments[db]; db != gpu.None && !ok {
			return gpu.FramebufferIncompleteDrawBuffer
		}
	}
	return gpu.FramebufferComplete
}

func (f *Fake) DrawBuffers(attachments []gpu.Enum) {
	if fb := f.framebuffers[f.drawFramebuffer]; fb != nil {
		fb.DrawBuffers = append([]gpu.Enum(nil), attachments...)
	}
}

func (f *Fake) ReadBuffer(source gpu.Enum) {
	if fb := f.framebuffers[f.readFramebuffer]; fb != nil {
		fb.ReadBuffer = source
	}
}

func (f *Fake) ReadPixels(x, y, width, height int32, format, typ gpu.Enum, dst any) {
	var src *Surface
	if f.readFramebuffer == 0 {
		src = f.screenColor
		if format == gpu.DepthComponent {
			src = f.screenDepth
		}
	} else if fb := f.framebuffers[f.readFramebuffer]; fb != nil {
		point := fb.ReadBuffer
		if format == gpu.DepthComponent {
			point = gpu.DepthAttachment
		}
		if a, ok := fb.Attachments[point]; ok {
			src = f.surfaceOf(a)
		}
	}
	if src == nil {
		return
	}
	n := components(format)
	i := 0
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			var pixel [4]float32
			if col < src.Width && row < src.Height {
				pixel = src.At(col, row)
			}
			for c := 0; c < n; c++ {
				switch d := dst.(type) {
				case []float32:
					if i < len(d) {
						d[i] = pixel[c]
					}
				case []uint8:
					if i < len(d) {
						d[i] = uint8(mgl32.Clamp(pixel[c], 0, 1)*255 + 0.5)
					}
				}
				i++
			}
		}
	}
}

func (f *Fake) CreateRenderbuffer() (uint32, error) {
	id, err := f.create(gpu.KindRenderbuffer)
	if err == nil {
		f.renderbuffers[id] = &Renderbuffer{}
	}
	return id, err
}

func (f *Fake) DeleteRenderbuffer(id uint32) {
	if f.remove(gpu.KindRenderbuffer, id) {
		delete(f.renderbuffers, id)
	}
}

func (f *Fake) BindRenderbuffer(id uint32) { f.renderbuffer = id }

func (f *Fake) RenderbufferStorage(internalFormat gpu.Enum, width, height int32) {
	if rb := f.renderbuffers[f.renderbuffer]; rb != nil {
		rb.InternalFormat = internalFormat
		rb.Surface = newSurface(width, height)
	}
}

// Shaders and programs

func (f *Fake) CreateShader(stage gpu.Enum) (uint32, error) {
	id, err := f.create(gpu.KindShader)
	if err == nil {
		f.shaders[id] = &shader{stage: stage}
	}
	return id, err
}

func (f *Fake) DeleteShader(id uint32) {
	if f.remove(gpu.KindShader, id) {
		delete(f.shaders, id)
	}
}

func (f *Fake) ShaderSource(id uint32, source string) {
	if s := f.shaders[id]; s != nil {
		s.source = source
	}
}

func (f *Fake) CompileShader(id uint32) {
	s := f.shaders[id]
	if s == nil {
		return
	}
	f.CompileCount++
	s.compiled, s.log = true, ""
	if f.CompileFails != nil {
		if log := f.CompileFails(s.source); log != "" {
			s.compiled, s.log = false, log
		}
	}
}

func (f *Fake) ShaderCompiled(id uint32) bool { return f.shaders[id] != nil && f.shaders[id].compiled }

func (f *Fake) ShaderInfoLog(id uint32) string {
	if s := f.shaders[id]; s != nil {
		return s.log
	}
	return ""
}

func (f *Fake) CreateProgram() (uint32, error) {
	id, err := f.create(gpu.KindProgram)
	if err == nil {
		f.programs[id] = &Program{
			Uniforms:  map[string]any{},
			Blocks:    map[string]uint32{},
			blocks:    map[string]uint32{},
			locations: map[string]int32{},
			names:     map[int32]string{},
			attribs:   map[string]int32{},
		}
	}
	return id, err
}

func (f *Fake) DeleteProgram(id uint32) {
	if f.remove(gpu.KindProgram, id) {
		delete(f.programs, id)
		if f.program == id {
			f.program = 0
		}
	}
}

func (f *Fake) AttachShader(program, shader uint32) {
	if p := f.programs[program]; p != nil {
		p.shaders = append(p.shaders, shader)
	}
}

func (f *Fake) DetachShader(program, shader uint32) {
	p := f.programs[program]
	if p == nil {
		return
	}
	for i, s := range p.shaders {
		if s == shader {
			p.shaders = append(p.shaders[:i], p.shaders[i+1:]...)
			return
		}
	}
}

func (f *Fake) LinkProgram(id uint32) {
	p := f.programs[id]
	if p == nil {
		return
	}
	f.LinkCount++
	p.Linked, p.Log = true, ""
	for _, sid := range p.shaders {
		s := f.shaders[sid]
		if s == nil || !s.compiled {
			p.Linked, p.Log = false, "attached shader not compiled"
			return
		}
		switch s.stage {
		case gpu.VertexShader:
			p.Vertex = s.source
		case gpu.FragmentShader:
			p.Fragment = s.source
		}
	}
	if f.LinkFails != nil {
		if log := f.LinkFails(p.Vertex, p.Fragment); log != "" {
			p.Linked, p.Log = false, log
		}
	}
}

func (f *Fake) ProgramLinked(id uint32) bool { return f.programs[id] != nil && f.programs[id].Linked }

func (f *Fake) ProgramInfoLog(id uint32) string {
	if p := f.programs[id]; p != nil {
		return p.Log
	}
	return ""
}

func (f *Fake) UseProgram(id uint32) { f.program = id }

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

func declares(source, name string) bool {
	base := identifier.FindString(name)
	if base == "" {
		return false
	}
	return regexp.MustCompile(`\b` + base + `\b`).MatchString(source)
}

func (f *Fake) GetUniformLocation(program uint32, name string) int32 {
	p := f.programs[program]
	if p == nil || !p.Linked {
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	if !declares(p.Vertex, name) && !declares(p.Fragment, name) {
		return -1
	}
	loc := int32(len(p.locations))
	p.locations[name] = loc
	p.names[loc] = name
	return loc
}

func (f *Fake) GetAttribLocation(program uint32, name string) int32 {
	p := f.programs[program]
	if p == nil || !p.Linked {
		return -1
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	decl := regexp.MustCompile(`\bin\s+\w+\s+` + regexp.QuoteMeta(name) + `\s*;`)
	if !decl.MatchString(p.Vertex) {
		return -1
	}
	loc := int32(len(p.attribs))
	p.attribs[name] = loc
	return loc
}

func (f *Fake) GetUniformBlockIndex(program uint32, name string) uint32 {
	p := f.programs[program]
	if p == nil || !p.Linked {
		return gpu.InvalidIndex
	}
	if idx, ok := p.blocks[name]; ok {
		return idx
	}
	block := regexp.MustCompile(`\buniform\s+` + regexp.QuoteMeta(name) + `\b`)
	if !block.MatchString(p.Vertex) && !block.MatchString(p.Fragment) {
		return gpu.InvalidIndex
	}
	idx := uint32(len(p.blocks))
	p.blocks[name] = idx
	return idx
}

func (f *Fake) UniformBlockBinding(program, blockIndex, binding uint32) {
	p := f.programs[program]
	if p == nil {
		return
	}
	for name, idx := range p.blocks {
		if idx == blockIndex {
			p.Blocks[name] = binding
		}
	}
}

func (f *Fake) setUniform(location int32, v any) {
	p := f.programs[f.program]
	if p == nil || location < 0 {
		return
	}
	if name, ok := p.names[location]; ok {
		p.Uniforms[name] = v
	}
}

func (f *Fake) Uniform1i(location int32, v int32)       { f.setUniform(location, v) }
func (f *Fake) Uniform1f(location int32, v float32)     { f.setUniform(location, v) }
func (f *Fake) Uniform2f(location int32, x, y float32)  { f.setUniform(location, mgl32.Vec2{x, y}) }
func (f *Fake) Uniform3f(location int32, x, y, z float32) {
	f.setUniform(location, mgl32.Vec3{x, y, z})
}
func (f *Fake) Uniform4f(location int32, x, y, z, w float32) {
	f.setUniform(location, mgl32.Vec4{x, y, z, w})
}
func (f *Fake) UniformMatrix3fv(location int32, m mgl32.Mat3) { f.setUniform(location, m) }
func (f *Fake) UniformMatrix4fv(location int32, m mgl32.Mat4) { f.setUniform(location, m) }

// State

func (f *Fake) Enable(capability gpu.Enum)  { f.enabled[capability] = true }
func (f *Fake) Disable(capability gpu.Enum) { f.enabled[capability] = false }
func (f *Fake) DepthFunc(function gpu.Enum) { f.depthFunc = function }
func (f *Fake) DepthMask(write bool)        { f.depthMask = write }
func (f *Fake) ColorMask(r, g, b, a bool)   { f.colorMask = [4]bool{r, g, b, a} }
func (f *Fake) CullFace(face gpu.Enum)      { f.cullFace = face }

func (f *Fake) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.Enum) {}
func (f *Fake) BlendEquationSeparate(rgb, alpha gpu.Enum)                       {}

func (f *Fake) Viewport(x, y, width, height int32) { f.viewport = [4]int32{x, y, width, height} }
func (f *Fake) Scissor(x, y, width, height int32)  { f.scissor = [4]int32{x, y, width, height} }
func (f *Fake) ClearColor(r, g, b, a float32)      { f.clearColor = [4]float32{r, g, b, a} }
func (f *Fake) ClearDepth(depth float64)           { f.clearDepth = depth }

func (f *Fake) Clear(mask gpu.Enum) {
	color := mask&gpu.ColorBufferBit != 0
	depth := mask&gpu.DepthBufferBit != 0 && f.depthMask
	d := float32(f.clearDepth)
	if f.drawFramebuffer == 0 {
		if color {
			f.screenColor.fill(f.clearColor, f.colorMask)
		}
		if depth {
			f.screenDepth.fill([4]float32{d, d, d, d}, [4]bool{true, true, true, true})
		}
		return
	}
	fb := f.framebuffers[f.drawFramebuffer]
	if fb == nil {
		return
	}
	if color {
		for _, point := range fb.DrawBuffers {
			if a, ok := fb.Attachments[point]; ok {
				if s := f.surfaceOf(a); s != nil {
					s.fill(f.clearColor, f.colorMask)
				}
			}
		}
	}
	if depth {
		if a, ok := fb.Attachments[gpu.DepthAttachment]; ok {
			if s := f.surfaceOf(a); s != nil {
				s.fill([4]float32{d, d, d, d}, [4]bool{true, true, true, true})
			}
		}
	}
}

// Drawing

func (f *Fake) record(mode gpu.Enum, first, count, instances int32, indexed bool) {
	textures := map[uint32]uint32{}
	for unit, targets := range f.boundTextures {
		for _, id := range targets {
			if id != 0 {
				textures[unit] = id
			}
		}
	}
	f.Draws = append(f.Draws, DrawCall{
		Mode:        mode,
		First:       first,
		Count:       count,
		Instances:   instances,
		Indexed:     indexed,
		Program:     f.program,
		Framebuffer: f.drawFramebuffer,
		Viewport:    f.viewport,
		DepthTest:   f.enabled[gpu.DepthTestCap],
		DepthFunc:   f.depthFunc,
		DepthMask:   f.depthMask,
		ColorMask:   f.colorMask,
		Blend:       f.enabled[gpu.BlendCap],
		Cull:        f.enabled[gpu.CullFaceCap],
		Textures:    textures,
	})
}

func (f *Fake) DrawArrays(mode gpu.Enum, first, count int32) {
	f.record(mode, first, count, 1, false)
}

func (f *Fake) DrawArraysInstanced(mode gpu.Enum, first, count, instances int32) {
	f.record(mode, first, count, instances, false)
}

func (f *Fake) DrawElements(mode gpu.Enum, count int32, typ gpu.Enum, offset int) {
	f.record(mode, 0, count, 1, true)
}

func (f *Fake) DrawElementsInstanced(mode gpu.Enum, count int32, typ gpu.Enum, offset int, instances int32) {
	f.record(mode, 0, count, instances, true)
}

func (f *Fake) Finish()            {}
func (f *Fake) GetError() gpu.Enum { return gpu.NoError }

// String summarises live objects, handy in failure messages.
func (f *Fake) String() string {
	var parts []string
	for kind := gpu.KindBuffer; kind <= gpu.KindProgram; kind++ {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, len(f.live[kind])))
	}
	return strings.Join(parts, " ")
}

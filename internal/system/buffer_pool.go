package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры *image.RGBA одного размера между
// рендером и записью PNG, чтобы не нагружать GC.
type ImagePool struct {
	pools sync.Map // image.Point -> *sync.Pool
	fresh atomic.Int64
}

var globalPool = &ImagePool{}

// GetImage возвращает кадр из общего пула. Содержимое не очищается:
// вызывающий обязан перерисовать его целиком.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает кадр в общий пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Allocated - сколько кадров общий пул создал с нуля.
func Allocated() int64 {
	return globalPool.fresh.Load()
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	if v, ok := p.pools.Load(size); ok {
		return v.(*sync.Pool)
	}
	v, _ := p.pools.LoadOrStore(size, &sync.Pool{
		New: func() any {
			p.fresh.Add(1)
			return image.NewRGBA(image.Rectangle{Max: size})
		},
	})
	return v.(*sync.Pool)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	img := p.pool(rect.Size()).Get().(*image.RGBA)
	if img.Rect != rect {
		// пул хранит кадры с началом в (0,0)
		img.Rect = rect
	}
	return img
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}

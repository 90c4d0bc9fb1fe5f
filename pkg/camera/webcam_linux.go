package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/blackjack/webcam"
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/metrics"
)

const (
	// from https://github.com/blackjack/webcam/blob/master/examples/http_mjpeg_streamer/webcam.go
	v4l2PixFmtYuyv = 0x56595559
	jpegVideo      = 1196444237

	// frameTimeout is in seconds.
	frameTimeout = 1
)

// Webcam captures from a V4L2 device on a background goroutine into a
// Latest queue.  If the device goes away, Next reports ErrUnplugged
// and the following call reopens it.
type Webcam struct {
	l       hclog.Logger
	metrics *metrics.Metrics

	device        string
	width, height uint32
	fps           float32
	depth         int

	mu     sync.Mutex
	cam    *webcam.Webcam
	format webcam.PixelFormat
	w, h   uint32
	buf    *Latest
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewWebcam returns a capture source for the device.  Nothing is
// opened until the first call to Next.
func NewWebcam(device string, width, height, fps, depth int, opts ...Option) *Webcam {
	w := &Webcam{
		l:       hclog.NewNullLogger(),
		metrics: metrics.New(),
		device:  device,
		width:   uint32(width),
		height:  uint32(height),
		fps:     float32(fps),
		depth:   depth,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Next returns the next captured frame.
func (w *Webcam) Next(ctx context.Context) (image.Image, error) {
	w.mu.Lock()
	if w.cam == nil {
		if err := w.start(); err != nil {
			w.mu.Unlock()
			return nil, fmt.Errorf("%w: %v", ErrUnplugged, err)
		}
	}
	buf := w.buf
	w.mu.Unlock()

	img, err := buf.Next(ctx)
	if err != nil && ctx.Err() == nil {
		w.Close()
	}
	return img, err
}

// start must be called with mu held.
func (w *Webcam) start() error {
	cam, err := webcam.Open(w.device)
	if err != nil {
		return fmt.Errorf("cannot open webcam [%s] : %w", w.device, err)
	}

	formats := cam.GetSupportedFormats()
	format := webcam.PixelFormat(0)
	for _, f := range []webcam.PixelFormat{jpegVideo, v4l2PixFmtYuyv} {
		if _, ok := formats[f]; ok && len(cam.GetSupportedFrameSizes(f)) > 0 {
			format = f
			break
		}
	}
	if format == 0 {
		cam.Close()
		return fmt.Errorf("no supported format, supported ones: %v", formats)
	}

	format, width, height, err := cam.SetImageFormat(format, w.width, w.height)
	if err != nil {
		cam.Close()
		return fmt.Errorf("cannot set image format: %w", err)
	}
	if err := cam.SetFramerate(w.fps); err != nil {
		w.l.Warn("Camera refused frame rate", "fps", w.fps, "error", err)
	}
	if err := cam.SetBufferCount(2); err != nil {
		cam.Close()
		return fmt.Errorf("cannot set buffer count: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return fmt.Errorf("cannot start webcam stream: %w", err)
	}

	w.cam = cam
	w.format = format
	w.w, w.h = width, height
	w.buf = NewLatest(w.depth, w.metrics)
	w.stop = make(chan struct{})
	w.l.Info("Camera streaming", "device", w.device, "width", width, "height", height, "format", formats[format])

	w.wg.Add(1)
	go w.capture(cam, w.buf, w.stop)
	return nil
}

func (w *Webcam) capture(cam *webcam.Webcam, buf *Latest, stop chan struct{}) {
	defer w.wg.Done()
	for {
		select {
		case <-stop:
			return
		default:
		}

		err := cam.WaitForFrame(frameTimeout)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			w.l.Error("Camera stopped", "error", err)
			buf.Fail(fmt.Errorf("%w: %v", ErrUnplugged, err))
			return
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			w.l.Error("Could not read frame", "error", err)
			buf.Fail(fmt.Errorf("%w: %v", ErrUnplugged, err))
			return
		}
		if len(frame) == 0 {
			continue
		}

		img, err := w.decode(frame)
		if err != nil {
			w.l.Warn("Dropping undecodable frame", "error", err)
			continue
		}
		buf.Put(img)
	}
}

func (w *Webcam) decode(frame []byte) (image.Image, error) {
	switch w.format {
	case v4l2PixFmtYuyv:
		yuyv := image.NewYCbCr(image.Rect(0, 0, int(w.w), int(w.h)), image.YCbCrSubsampleRatio422)
		if len(frame) < len(yuyv.Cb)*4 {
			return nil, fmt.Errorf("short frame: %d bytes", len(frame))
		}
		for i := range yuyv.Cb {
			ii := i * 4
			yuyv.Y[i*2] = frame[ii]
			yuyv.Y[i*2+1] = frame[ii+2]
			yuyv.Cb[i] = frame[ii+1]
			yuyv.Cr[i] = frame[ii+3]
		}
		return yuyv, nil
	case jpegVideo:
		return jpeg.Decode(bytes.NewReader(frame))
	default:
		return nil, fmt.Errorf("unsupported pixel format %d", w.format)
	}
}

// Close stops capture and releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cam == nil {
		return nil
	}
	close(w.stop)
	w.wg.Wait()
	err := w.cam.Close()
	w.cam = nil
	return err
}

// Package benchbar provides a really simple progress bar for the benchmarking
// process.
package benchbar

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar tracks the progress of one benchmark phase. All methods are safe for
// concurrent use.
type Bar struct {
	pb *progressbar.ProgressBar
}

// NewBar returns a bar expecting maxItems increments. A silent bar renders
// nothing.
func NewBar(description string, maxItems int, silent bool) *Bar {
	var pb *progressbar.ProgressBar
	if silent {
		pb = progressbar.DefaultSilent(int64(maxItems), description)
	} else {
		pb = progressbar.Default(int64(maxItems), description)
	}
	_ = pb.Set(0)

	return &Bar{pb: pb}
}

// NewBarTo returns a bar rendering to w.
func NewBarTo(w io.Writer, description string, maxItems int) *Bar {
	pb := progressbar.NewOptions(
		maxItems,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(10),
	)
	return &Bar{pb: pb}
}

// Inc adds one finished item.
func (b *Bar) Inc() {
	_ = b.pb.Add(1)
}

// Current returns the finished items so far.
func (b *Bar) Current() int64 {
	return b.pb.State().CurrentNum
}

// Finish fills the bar and releases it.
func (b *Bar) Finish() {
	_ = b.pb.Finish()
	_ = b.pb.Close()
}

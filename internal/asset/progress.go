package asset

import "io"

// Progress is a download progress sample. Total is -1 when the size is unknown.
type Progress struct {
	Loaded int64
	Total  int64
}

// Fraction returns Loaded/Total in [0, 1], or -1 when Total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	f := float64(p.Loaded) / float64(p.Total)
	return min(max(f, 0), 1)
}

// progressReader reports bytes read to a channel without ever blocking the reader.
type progressReader struct {
	r     io.Reader
	ch    chan<- Progress
	state Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.state.Loaded += int64(n)
		p.send()
	}
	return n, err
}

// send delivers the current sample if the consumer has room, and drops it otherwise.
func (p *progressReader) send() {
	if p.ch == nil {
		return
	}
	select {
	case p.ch <- p.state:
	default:
	}
}

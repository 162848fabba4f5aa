//go:build statsview

package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Launch serves the charts on addr from a background goroutine.
func Launch(addr string) (*Server, error) {
	url, err := pageURL(addr)
	if err != nil {
		return nil, err
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()
	return &Server{URL: url, stop: mgr.Stop}, nil
}

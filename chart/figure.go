// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// Figure is a built plot ready to be rendered.
type Figure struct {
	Kind   Kind
	Title  string
	XLabel string
	YLabel string

	chart gochart.Chart
}

// Render writes the figure to w as PNG.
func (f *Figure) Render(w io.Writer) error {
	if err := f.chart.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %s: %w", f.Kind, err)
	}
	return nil
}

// PNG returns the encoded figure.
func (f *Figure) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Image renders the figure into an image for display.
func (f *Figure) Image() (image.Image, error) {
	data, err := f.PNG()
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered plot: %w", err)
	}
	return img, nil
}

// Save writes the figure as a PNG file, replacing any existing file.
func (f *Figure) Save(path string) error {
	data, err := f.PNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

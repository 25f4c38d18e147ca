// This file includes code from the Gio project, licensed under the MIT License.
// See the LICENSE file in the project root for more information.

package editor

import (
	"bufio"
	"io"

	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/exp/slices"
)

// graphemeReader segments paragraphs of text into grapheme clusters.
type graphemeReader struct {
	segmenter.Segmenter
	graphemes  []int
	paragraph  []rune
	source     io.ReaderAt
	cursor     int64
	reader     *bufio.Reader
	runeOffset int
}

// SetSource configures the reader to pull from source.
func (p *graphemeReader) SetSource(source io.ReaderAt) {
	p.source = source
	p.cursor = 0
	p.reader = bufio.NewReader(p)
	p.runeOffset = 0
}

// Read exists to satisfy io.Reader. It should not be directly invoked.
func (p *graphemeReader) Read(b []byte) (int, error) {
	n, err := p.source.ReadAt(b, p.cursor)
	p.cursor += int64(n)
	return n, err
}

// next decodes one paragraph of rune data.
func (p *graphemeReader) next() ([]rune, bool) {
	p.paragraph = p.paragraph[:0]
	var err error
	var r rune
	for err == nil {
		r, _, err = p.reader.ReadRune()
		if err != nil {
			break
		}
		p.paragraph = append(p.paragraph, r)
		if r == '\n' {
			break
		}
	}
	return p.paragraph, err == nil
}

// Graphemes will return the next paragraph's grapheme cluster boundaries,
// if any. If it returns an empty slice, there is no more data (all paragraphs
// have been segmented).
func (p *graphemeReader) Graphemes() []int {
	var more bool
	p.graphemes = p.graphemes[:0]
	p.paragraph, more = p.next()
	if len(p.paragraph) == 0 && !more {
		return nil
	}
	p.Segmenter.Init(p.paragraph)
	iter := p.Segmenter.GraphemeIterator()
	if iter.Next() {
		graph := iter.Grapheme()
		p.graphemes = append(p.graphemes,
			p.runeOffset+graph.Offset,
			p.runeOffset+graph.Offset+len(graph.Text),
		)
	}
	for iter.Next() {
		graph := iter.Grapheme()
		p.graphemes = append(p.graphemes, p.runeOffset+graph.Offset+len(graph.Text))
	}
	p.runeOffset += len(p.paragraph)
	return p.graphemes
}

// clusterBoundaries returns the sorted rune offsets of every grapheme
// cluster boundary of the text, including 0 and the text length.
func (e *Editor) clusterBoundaries() []int {
	e.seg.SetSource(e.buffer)

	bounds := []int{0}
	for {
		g := e.seg.Graphemes()
		if len(g) == 0 {
			break
		}
		for _, b := range g {
			if b != bounds[len(bounds)-1] {
				bounds = append(bounds, b)
			}
		}
	}

	return bounds
}

// moveByClusters returns the offset distance grapheme clusters away from
// pos. An offset inside a cluster counts its cluster start as the first
// step backward and its cluster end as the first step forward.
func (e *Editor) moveByClusters(pos, distance int) int {
	bounds := e.clusterBoundaries()

	i, found := slices.BinarySearch(bounds, pos)
	if !found && distance > 0 {
		i--
	}
	i = min(max(i+distance, 0), len(bounds)-1)

	return bounds[i]
}

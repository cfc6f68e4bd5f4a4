// Zaparoo Jacket
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Jacket.
//
// Zaparoo Jacket is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Jacket is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Jacket.  If not, see <http://www.gnu.org/licenses/>.

package assets

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

const IconSize = 64

var (
	iconBackground = color.RGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff}
	iconForeground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

type ellipse struct {
	x0, y0, x1, y1 int
}

func (e ellipse) contains(x, y int) bool {
	cx := float64(e.x0+e.x1) / 2
	cy := float64(e.y0+e.y1) / 2
	rx := float64(e.x1-e.x0) / 2
	ry := float64(e.y1-e.y0) / 2
	dx := (float64(x) + 0.5 - cx) / rx
	dy := (float64(y) + 0.5 - cy) / ry
	return dx*dx+dy*dy <= 1
}

// iconImage draws a simple gamepad: two grips joined by a body.
func iconImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	left := ellipse{10, 20, 30, 40}
	right := ellipse{34, 20, 54, 40}
	body := image.Rect(20, 35, 44, 50)
	for y := range IconSize {
		for x := range IconSize {
			c := iconBackground
			if left.contains(x, y) || right.contains(x, y) || image.Pt(x, y).In(body) {
				c = iconForeground
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// IconPNG returns the tray icon as PNG data.
func IconPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, iconImage()); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// IconICO returns the tray icon wrapped in a single-image ICO container,
// which is what the Windows tray expects.
func IconICO() ([]byte, error) {
	data, err := IconPNG()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	header := struct {
		Reserved uint16
		Type     uint16
		Count    uint16
	}{Type: 1, Count: 1}
	entry := struct {
		Width      uint8
		Height     uint8
		Colors     uint8
		Reserved   uint8
		Planes     uint16
		BitCount   uint16
		BytesInRes uint32
		Offset     uint32
	}{
		Width:      IconSize,
		Height:     IconSize,
		Planes:     1,
		BitCount:   32,
		BytesInRes: uint32(len(data)), //nolint:gosec // icon is a few KB
		Offset:     6 + 16,
	}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write icon header: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
		return nil, fmt.Errorf("failed to write icon entry: %w", err)
	}
	buf.Write(data)
	return buf.Bytes(), nil
}

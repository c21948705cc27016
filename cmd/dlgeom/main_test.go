package main

import (
	"bytes"
	goimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTransform(t *testing.T) {
	out, err := run(t, "transform", "--dest", "0,0,800,600", "--area", "0.25,0.25,0.5,0.5", "0.5,0.5", "0.25,0.25,0.5,0.5")
	require.NoError(t, err)
	assert.Equal(t, "400,300\n0,0,800,600\n", out)

	out, err = run(t, "invtransform", "--dest", "0,0,800,600", "400,300", "0,0,400,300")
	require.NoError(t, err)
	assert.Equal(t, "0.5,0.5\n0,0,0.5,0.5\n", out)
}

func TestTransformRejectsBadInput(t *testing.T) {
	_, err := run(t, "transform", "--dest", "0,0,800", "0.5,0.5")
	assert.Error(t, err)

	_, err = run(t, "transform", "--dest", "0,0,800,600", "1,2,3")
	assert.Error(t, err)

	_, err = run(t, "transform", "0.5,0.5")
	assert.Error(t, err, "--dest is required")
}

func TestRegions(t *testing.T) {
	out, err := run(t, "regions", "pack", "0.1,0.1,0.2,0.2", "0.5,0.5,0.1,0.1")
	require.NoError(t, err)
	assert.Equal(t, "0.1/0.1/0.2/0.2,0.5/0.5/0.1/0.1\n", out)

	out, err = run(t, "regions", "parse", "0.1/0.1/0.2/0.2,0.5/0.5/0.1/0.1")
	require.NoError(t, err)
	assert.Equal(t, "0.1,0.1,0.2,0.2\n0.5,0.5,0.1,0.1\n", out)

	out, err = run(t, "regions", "parse", "--width", "0.2", "x=0.5 y=0.5")
	require.NoError(t, err)
	assert.Equal(t, "0.4,0.4,0.2,0.2\n", out)

	_, err = run(t, "regions", "parse", "0.1/0.1")
	assert.Error(t, err)
}

func TestRegionsExport(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<map class="dl-regioncontent">
<area coords="0.2,0.2,0.1,0.1" title="Fig. 1">
<area coords="0.6,0.6,0.1,0.1" title="Note">
</map>`), 0o644))

	out, err := run(t, "regions", "export", "--rg", "0.1/0.1/0.2/0.2", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "1: 0.1,0.1,0.2,0.2\n", out)

	out, err = run(t, "regions", "export", "--html", page, "--match", "^Fig", "--format", "digilib")
	require.NoError(t, err)
	assert.Equal(t, "0.2,0.2,0.1,0.1\n", out)

	_, err = run(t, "regions", "export", "--format", "pdf")
	assert.Error(t, err)
}

func TestMeasure(t *testing.T) {
	out, err := run(t, "measure", "--size", "1000,1000", "0,0", "0.5,0")
	require.NoError(t, err)
	assert.Equal(t, "pixels:    500.00\nrectified: 0.5000\nfactor:    1\nlength:    0.5 m = 50 cm\n", out)

	out, err = run(t, "measure", "--size", "1000,1000", "--known", "0,0:0.25,0", "--length", "2", "0,0", "0.5,0")
	require.NoError(t, err)
	assert.Contains(t, out, "factor:    8\n")
	assert.Contains(t, out, "length:    4 m = 400 cm\n")

	out, err = run(t, "measure", "--size", "1000,500", "--dpi", "254", "0,0", "1,0")
	require.NoError(t, err)
	assert.Contains(t, out, "mm:        100.00\n")

	_, err = run(t, "measure", "--size", "1000,1000", "--from", "parsec", "0,0", "1,1")
	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	out, err := run(t, "params", "--canonical", "ww=2&wx=0.5")
	require.NoError(t, err)
	assert.Equal(t, "wx=0.5&ww=0.5\n", out)

	out, err = run(t, "params", "fn=books/page&rg=0.1/0.1/0.2/0.2&mo=fullscreen")
	require.NoError(t, err)
	assert.Contains(t, out, "page:    books/page #1\n")
	assert.Contains(t, out, "area:    0,0,1,1\n")
	assert.Contains(t, out, "regions: 0.1/0.1/0.2/0.2\n")
	assert.Contains(t, out, "modes:   fullscreen\n")

	_, err = run(t, "params", "wx=2")
	assert.Error(t, err, "area outside the page")

	_, err = run(t, "params", "rg=0.1/x")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.png")
	img := goimage.NewRGBA(goimage.Rect(0, 0, 100, 50))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	dst := filepath.Join(dir, "out.png")
	out, err := run(t, "render", "--width", "40", "--height", "40", "--rg", "0/0/0.5/1", "--blend", "multiply", src, dst)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "(40x20)\n"), out)

	f, err = os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	got, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, goimage.Rect(0, 0, 40, 20), got.Bounds())

	tinted := color.NRGBAModel.Convert(got.At(5, 10)).(color.NRGBA)
	plain := color.NRGBAModel.Convert(got.At(35, 10)).(color.NRGBA)
	assert.Less(t, tinted.B, plain.B, "left half is highlighted")

	_, err = run(t, "render", "--blend", "overlay", src, dst)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "dlgeom "))
}

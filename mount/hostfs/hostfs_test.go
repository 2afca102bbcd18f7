// go-sdspi
// Copyright (c) 2026 The go-sdspi Authors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-sdspi.
//
// go-sdspi is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-sdspi is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-sdspi; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package hostfs

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedworks/go-sdspi/mount"
)

func newMounted(t *testing.T) *Filesystem {
	t.Helper()
	h := New(t.TempDir())
	require.NoError(t, h.Mount())
	return h
}

func requireCode(t *testing.T, err error, want mount.FSCode) {
	t.Helper()
	var fe *mount.FSError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, want, fe.Code)
}

func TestMountMissingRoot(t *testing.T) {
	t.Parallel()
	h := New(filepath.Join(t.TempDir(), "nope"))

	requireCode(t, h.Mount(), mount.FSNoFile)
}

func TestOperationsBeforeMount(t *testing.T) {
	t.Parallel()
	h := New(t.TempDir())

	_, err := h.Open("a.txt", mount.ModeRead)
	requireCode(t, err, mount.FSNotEnabled)
	requireCode(t, h.Mkdir("d"), mount.FSNotEnabled)
	requireCode(t, h.Stat("a.txt"), mount.FSNotEnabled)
}

func TestCreateWriteReadBack(t *testing.T) {
	t.Parallel()
	h := newMounted(t)

	f, err := h.Open("note.txt", mount.ModeWrite|mount.ModeCreateAlways)
	require.NoError(t, err)
	_, err = f.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = h.Open("note.txt", mount.ModeRead)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
	assert.True(t, f.EOF())
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()
	h := newMounted(t)

	_, err := h.Open("absent.txt", mount.ModeRead)
	requireCode(t, err, mount.FSNoFile)
}

func TestCreateNewRefusesExisting(t *testing.T) {
	t.Parallel()
	h := newMounted(t)

	f, err := h.Open("a.txt", mount.ModeWrite|mount.ModeCreateNew)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = h.Open("a.txt", mount.ModeWrite|mount.ModeCreateNew)
	requireCode(t, err, mount.FSExist)
}

func TestAppendMode(t *testing.T) {
	t.Parallel()
	h := newMounted(t)

	for _, chunk := range []string{"one ", "two"} {
		f, err := h.Open("log.txt", mount.ModeWrite|mount.ModeOpenAppend)
		require.NoError(t, err)
		_, err = f.Write([]byte(chunk))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	f, err := h.Open("log.txt", mount.ModeRead)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "one two", string(got))
}

func TestSeekResetsEOF(t *testing.T) {
	t.Parallel()
	h := newMounted(t)

	f, err := h.Open("s.txt", mount.ModeRead|mount.ModeWrite|mount.ModeCreateAlways)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	_, err = f.Write([]byte("abcd"))
	require.NoError(t, err)

	buf := make([]byte, 8)
	for {
		if _, err := f.Read(buf); err != nil {
			break
		}
	}
	require.True(t, f.EOF())

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.False(t, f.EOF())

	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(buf[:n]))
}

func TestMkdirStatRemove(t *testing.T) {
	t.Parallel()
	h := newMounted(t)

	require.NoError(t, h.Mkdir("sub"))
	require.NoError(t, h.Stat("sub"))
	requireCode(t, h.Mkdir("sub"), mount.FSExist)

	requireCode(t, h.Stat("sub/absent"), mount.FSNoFile)

	f, err := h.Open("sub/f.txt", mount.ModeWrite|mount.ModeOpenAlways)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, h.Stat("sub/f.txt"))
	require.NoError(t, h.Remove("sub/f.txt"))
	requireCode(t, h.Stat("sub/f.txt"), mount.FSNoFile)
}

func TestLabelAndFreeSpace(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	h := New(dir)
	require.NoError(t, h.Mount())

	label, err := h.Label()
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), label)

	free, total, err := h.FreeSpace()
	require.NoError(t, err)
	assert.NotZero(t, total)
	assert.LessOrEqual(t, free, total)
}

func TestControllerOverHostFilesystem(t *testing.T) {
	t.Parallel()
	h := New(t.TempDir())
	c := mount.NewController(alwaysPresent{}, h, "data")

	require.Equal(t, mount.StateAccess, c.Tick())
	require.True(t, c.Mounted())

	require.NoError(t, c.Open("run.log", mount.ModeWrite|mount.ModeCreateAlways))
	require.NoError(t, c.WriteString("tick 1\ntick 2\n"))
	require.NoError(t, c.Close())

	require.NoError(t, c.Open("run.log", mount.ModeRead))
	buf := make([]byte, 32)
	n, err := c.ReadLine(buf)
	require.NoError(t, err)
	assert.Equal(t, "tick 1\n", string(buf[:n]))
	require.NoError(t, c.Close())

	assert.Zero(t, c.FaultCode())
}

type alwaysPresent struct{}

func (alwaysPresent) Present() bool { return true }

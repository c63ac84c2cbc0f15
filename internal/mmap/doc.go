// Package mmap maps chunk files read-only into memory.
//
// A chunk is decoded from start to end exactly once per load, so mappings are
// advised as sequential. On platforms without mmap support the file is read
// into memory instead; callers see the same API.
//
//	m, err := mmap.Open("t0001.chnk")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
package mmap

// Package video delivers decoded frames to the race tracker.
//
// Videos are inspected with ffprobe for frame rate, frame count and
// creation time, then decoded by an ffmpeg subprocess writing raw RGB24
// frames to a pipe. Directories of still frames are read in lexical file
// order. Both sources number frames from 1 and derive millisecond
// timestamps from the frame rate. A callback returns ErrStop to end
// iteration early.
package video

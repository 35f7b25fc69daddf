// Package batch runs the alpha-diversity calculator over a directory of
// abundance tables.
//
// processor.go provides Processor.Process, which handles every matching file
// in the input directory in lexical order, and Processor.ProcessFile for a
// single file. A file that cannot be read, parsed or written produces a
// *FileError in the run Summary and, when diagnostics are enabled, a raw copy
// under the problem prefix; the batch always continues with the next file.
// Outputs are written atomically, so a failed file never leaves a partial
// metrics table behind.
//
// watch.go provides Processor.Watch, which runs one full batch and then
// reprocesses each input file as it is created or rewritten.
package batch

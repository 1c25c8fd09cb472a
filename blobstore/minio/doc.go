// Package minio stores segments in a MinIO (or other S3-compatible) bucket.
//
// Each blob is one object under a root prefix. Reads are ranged GETs, so a
// segment is streamed without being downloaded first. Writes are streamed
// through PutObject and become visible only when the WritableBlob is closed;
// Abort drops an unfinished upload.
//
//	store, err := minioblob.Dial("localhost:9000", "minioadmin", "minioadmin", false, "beans", "segments")
//	if err != nil {
//		return err
//	}
//
//	w, err := segment.Create(ctx, store, "beans-0001.seg", segment.WithCompression(segment.CompressionLZ4))
//	// append blocks, then w.Close()
//
//	r, err := segment.Open(ctx, heap, store, "beans-0001.seg")
//
// Use NewStore to pass a preconfigured *minio.Client instead.
package minio

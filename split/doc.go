// Package split partitions oversized PDF documents into page-bounded
// sub-documents so that downstream rasterization works on a bounded number
// of pages at a time.
//
// [Plan] computes the page spans without touching the file system:
//
//	split.Plan(25, 10, 10) // [1-10 11-20 21-25]
//
// A [Splitter] counts pages and, when the count exceeds its threshold, writes
// each span to a temporary file with pdfcpu:
//
//	s, err := split.New(10, 10)
//	set, err := s.Split(ctx, "scan.pdf")
//	if err != nil {
//	    return err
//	}
//	defer set.Close() // deletes every temporary sub-document
//	for _, part := range set.Parts {
//	    // part.Path, part.Span
//	}
//
// Documents at or under the threshold are returned as a single part that
// points at the original file; Close never removes the original.
package split

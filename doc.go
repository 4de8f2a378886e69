// Package submit holds the core of the submit-service sampling pipeline: it
// fetches the first few records of a remote geospatial or tabular data
// source and returns a normalized preview (detected format, field names,
// sample records) without ever downloading the source in full.
//
// The pipeline has a handful of stages, each kept deliberately small:
//
// 1. Classification
//
//	Classify turns a raw source URL plus size/offset query parameters into
//	a SampleRequest and a Classification describing which transport fetches
//	the bytes (HTTP, FTP, or an ArcGIS feature-server query), which format
//	decodes them (GeoJSON, delimited text, or a shapefile's DBF table), and
//	whether the payload is wrapped in a ZIP container. Classification looks
//	only at the URL, never at content.
//
// 2. Transport
//
//	The transport package fetches bytes from the classified location. Every
//	adapter hands back a stream whose Close tears down the underlying
//	connection immediately, which is what lets the pipeline stop a transfer
//	the moment it has enough records.
//
// 3. Decoding
//
//	Each format package (geojson, delim, dbf) implements RecordSource,
//	pulling one record at a time off the stream and reporting the ordered
//	field names it discovered. The zipwalk package walks archive entries
//	and hands each recognized one to the matching decoder.
//
// 4. Collection
//
//	The Collector applies the (offset, size) sample window to the record
//	stream and owns the SampleResult. When the window fills it tells the
//	caller to stop, and the caller closes the decoder and transport.
//
// The sample package wires these stages together; the web package exposes
// them over HTTP.
package submit

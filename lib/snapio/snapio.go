/*package snapio contains functions for reading the binary files written by the
HORSES3D solver: .hsol solution snapshots and .hmesh meshes.

Both formats are a fixed-offset header followed by one Fortran-style record
per mesh element. Each record holds four extents and a column-major payload
with that many float64 values. Decoding turns the records of one file into a
single field.Tensor indexed [element, x, y, z, channel].

Files are read into memory in full before decoding begins. Nothing in this
package writes the formats back out; FakeFile exists only to build test
inputs.
*/
package snapio

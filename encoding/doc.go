// Package encoding implements the variable-byte integer codec used by blackbox
// flight logs.
//
// # Variable-byte encoding
//
// Each output byte carries 7 data bits, least significant group first. The high
// bit is set on every byte except the last:
//
//	0     -> 0x00
//	127   -> 0x7f
//	128   -> 0x80 0x01
//	16383 -> 0xff 0x7f
//	16384 -> 0x80 0x80 0x01
//
// A 32-bit value takes 1 to 5 bytes.
//
// # Zig-zag mapping
//
// Signed fields are mapped to unsigned values before variable-byte encoding so
// that small negative numbers stay short:
//
//	 0 -> 0
//	-1 -> 1
//	 1 -> 2
//	-2 -> 3
//
// In the blackbox header these two schemes are field encodings 1 (unsigned) and
// 0 (signed). See format.EncodingUnsignedVB and format.EncodingSignedVB.
//
// # Record encoding
//
// FieldEncoder writes one record at a time into a pooled buffer:
//
//	enc := encoding.NewFieldEncoder()
//	defer enc.Release()
//
//	enc.WriteTag('I')
//	enc.WriteUnsigned(iteration)
//	enc.WriteSigned(axisP0)
//	out.Write(enc.Bytes())
//	enc.Reset()
package encoding

// This package implements serialising commands for, and parsing responses
// from, a strata tick database server.
//
// The protocol is asymmetric
//
// - Client commands are newline-terminated ASCII text lines
// - Server responses are binary frames with a fixed 9 byte header
//
// === Client Commands
//
// - `INFO`    - describe every store the server has loaded
// - `PING`    - PING! Server will respond with PONG.
// - `HELP`    - ask the server for its command reference
// - `ADD`     - append a single tick to the current store
// - `BULKADD` - start a batch append; each following line is one tick,
//               the batch ends with the `DDAKLUB` sentinel
// - `GET`     - read ticks back, `GET ALL AS JSON` or `GET n AS JSON`
// - `CLEAR`   - drop the current store's in-memory ticks (`CLEAR ALL`
//               for every store)
// - `FLUSH`   - commit the current store to disk (`FLUSH ALL` for
//               every store)
// - `CREATE`  - create a named store
// - `USE`     - switch the connection to a named store
//
// Command names are case sensitive and uppercase. There is no request
// id on the wire, so responses are correlated to commands purely by
// issuance order. See the client package for how that constraint is
// enforced.
//
// === Response frames
//
//   ```
//   +--------+----------------------------------+----------------+
//   | status | body length (uint64, big endian) | body           |
//   | 1 byte | 8 bytes                          | `length` bytes |
//   +--------+----------------------------------+----------------+
//   ```
//
// - status 0x1 means the command succeeded, anything else is a failure
// - the body is single-byte-per-character text; for the `AS JSON`
//   commands a successful body is a JSON document, on failure it is a
//   human readable diagnostic (`ERR: ...`)
//
// Note: the length field is the full 8 bytes after the status byte,
// big endian. Some historical clients only read the byte at offset 8,
// which is the low-order byte of the same field and agrees with it for
// any body under 256 bytes.
//
// A body whose text ends in the literal token `exit` instructs the
// client to close its side of the connection once the in-flight
// command has resolved.
package protocol

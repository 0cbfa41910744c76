// Package protocol implements the pinctl link protocol: Klipper-style frames
// carrying VLQ-encoded command requests and their replies.
//
// Frame layout:
//
//	len | seq | payload... | crc16 hi | crc16 lo | 0x7E
//
// len counts the whole frame. seq carries MessageDest in its high nibble and
// a 4-bit sequence number; a reply echoes the sequence of its request.
package protocol

// Version of the link protocol, reported in the dictionary header
const Version = "pinctl-link/1"

// Frame layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 255
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F
)

// IdentifyCommandID requests a chunk of the command dictionary.
// Args: offset, count. Reply detail: the chunk.
const IdentifyCommandID = 0

// IdentifyChunkSize is the dictionary chunk a client asks for per request
const IdentifyChunkSize = 128

// NextSeq advances a sequence byte, wrapping within the MessageDest nibble
func NextSeq(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}

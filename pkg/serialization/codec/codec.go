package codec

// Codec converts single scalar values to and from their byte encoding
type Codec interface {
	Width(v uint32) uint8
	Marshal(v uint32) ([]byte, error)
	MarshalWidth(v uint32, width uint8) ([]byte, error)
	Unmarshal(data []byte, v *uint32) error
}

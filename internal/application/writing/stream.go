package writing

// ChunkType 流式输出的消息类型
type ChunkType string

const (
	ChunkContent ChunkType = "content"
	ChunkError   ChunkType = "error"
	ChunkDone    ChunkType = "done"
)

// StreamChunk 内容与错误走同一个通道，由 Type 区分
type StreamChunk struct {
	Type    ChunkType
	Content string
	Err     error
}

package server

// Outbound 待发送的一帧；Binary 为 true 时以二进制帧发送（msgpack 快照）
type Outbound struct {
	Binary bool
	Data   []byte
}

// Conn 房间视角的连接：只负责非阻塞入队与关闭
type Conn interface {
	Enqueue(msg Outbound)
	Close()
}

// member 房间内的一个连接成员
type member struct {
	uid      string
	nickname string
	conn     Conn
}

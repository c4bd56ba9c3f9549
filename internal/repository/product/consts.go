package product

import "time"

const (
	// collection name
	usersNode   string = "users"
	productNode string = "products"

	// Fields' name and path
	CreatedAtFieldPath string = "createdAt"

	// Deletion and creation events are dropped when no consumer drains the buffer in time
	channelWriteTimeout time.Duration = time.Second * 3
	eventBufferSize     int           = 64
)

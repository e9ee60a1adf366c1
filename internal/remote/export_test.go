package remote

// SetReadFile replaces how c reads a fetched PDF back from disk.
func SetReadFile(c *Client, f func(string) ([]byte, error)) { c.readFile = f }

package api

// Ping checks that the backend is reachable by fetching its index page.
func (c *Client) Ping() error {
	_, err := c.get("/")
	return err
}

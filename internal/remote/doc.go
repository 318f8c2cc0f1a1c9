// Package remote is the client side of the keycalc remote keypad.
//
//	c, err := remote.Dial(ctx, "kitchen.local:7464")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	resp, err := c.Send(ctx, "12+30=")
//	fmt.Println(resp.Display) // 42
package remote

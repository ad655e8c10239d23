// Package admission bounds the number of connections handled at once.
//
// A Gate has a fixed capacity and a wait timeout. Every accepted connection
// acquires one slot before it is handled and releases it afterwards, whether
// handling succeeded or not. Waiters are admitted in arrival order, so a
// burst of connections is served first come first served.
//
// # Usage
//
//	gate, err := admission.NewGate(16, 30*time.Second)
//	if err != nil {
//	    return err
//	}
//	if err := gate.Acquire(ctx); err != nil {
//	    conn.Close() // shed
//	    return
//	}
//	defer gate.Release()
//
// # Thread Safety
//
// Gate is safe for concurrent use.
package admission

// Package serialization saves and loads flat parameter lists.
//
// A parameter file is a JSON array of numbers in the exact order produced by
// nn.Network.Parameters:
//
//	[0.1532, -0.0271, 1, 0, ...]
//
// Files ending in ".safetensors" hold the same list as one rank-1 F64 tensor
// named "parameters" in the SafeTensors layout.
//
// No shape or topology metadata is stored. Loading into a network requires an
// identical graph; nn.Network.SetParameterValues rejects lists whose length
// differs from the parameter count.
//
// Example usage:
//
//	// Save
//	if err := serialization.WriteFile("parity.json", net.ParameterValues()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load
//	values, err := serialization.ReadFile("parity.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := net.SetParameterValues(values); err != nil {
//	    log.Fatal(err)
//	}
package serialization

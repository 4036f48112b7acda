package integrations_test

import (
	"fmt"

	"github.com/matzehuels/stackaudit/pkg/integrations"
)

func ExampleJoinURL() {
	// Segments are path-escaped; the base keeps its scheme and host
	fmt.Println(integrations.JoinURL("https://api.nuget.org/", "v3", "registration3", "newtonsoft.json", "12.0.1.json"))
	fmt.Println(integrations.JoinURL("http://localhost:8080", "odd name"))
	// Output:
	// https://api.nuget.org/v3/registration3/newtonsoft.json/12.0.1.json
	// http://localhost:8080/odd%20name
}

func Example_errors() {
	// Standard errors for registry operations
	fmt.Println("ErrNotFound:", integrations.ErrNotFound)
	fmt.Println("ErrNetwork:", integrations.ErrNetwork)
	// Output:
	// ErrNotFound: resource not found
	// ErrNetwork: network error
}

// Package dotnet binds NuGet packages.config manifests to the NuGet registry.
//
// # Manifests
//
// [PackagesConfig] reads the classic packages.config format:
//
//	<?xml version="1.0" encoding="utf-8"?>
//	<packages>
//	  <package id="Newtonsoft.Json" version="12.0.1" targetFramework="net472" />
//	</packages>
//
// Every element named package contributes one declaration with its id and
// version attributes exactly as written; other attributes are ignored.
//
// # Lookups
//
// [Resolver] adapts a [nuget.Client] to [deps.Resolver]. It bounds each
// lookup with its own timeout, emits an OpenTelemetry span per lookup and
// converts every failure into the unknown-license default.
//
// [nuget.Client]: github.com/matzehuels/stackaudit/pkg/integrations/nuget.Client
// [deps.Resolver]: github.com/matzehuels/stackaudit/pkg/deps.Resolver
package dotnet

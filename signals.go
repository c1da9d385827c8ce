package wirejson

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals emitted by registries and the code generator.
var (
	SignalVariantRegistered   = capitan.NewSignal("wirejson.registry.registered", "Variant adapter registered")
	SignalVariantUnknown      = capitan.NewSignal("wirejson.registry.unknown", "Parsed object names no registered variant")
	SignalVariantUnregistered = capitan.NewSignal("wirejson.registry.unregistered", "Serialized value has no registered variant")
	SignalGenerateStart       = capitan.NewSignal("wirejson.generate.start", "Code generation beginning")
	SignalGenerateComplete    = capitan.NewSignal("wirejson.generate.complete", "Code generation finished")
)

// Field keys carried by the signals.
var (
	KeyRegistry      = capitan.NewStringKey("registry")
	KeyDiscriminator = capitan.NewStringKey("discriminator")
	KeyPackage       = capitan.NewStringKey("package")
	KeyTypeCount     = capitan.NewIntKey("type_count")
	KeyWarningCount  = capitan.NewIntKey("warning_count")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
)

func emitVariantRegistered(key, discriminator string) {
	capitan.Emit(context.Background(), SignalVariantRegistered,
		KeyRegistry.Field(key),
		KeyDiscriminator.Field(discriminator),
	)
}

func emitVariantUnknown(key, discriminator string) {
	capitan.Emit(context.Background(), SignalVariantUnknown,
		KeyRegistry.Field(key),
		KeyDiscriminator.Field(discriminator),
	)
}

func emitVariantUnregistered(key, discriminator string) {
	capitan.Error(context.Background(), SignalVariantUnregistered,
		KeyRegistry.Field(key),
		KeyDiscriminator.Field(discriminator),
		KeyError.Field(ErrUnregisteredVariant),
	)
}

// EmitGenerateStart is called by the generator before emitting a package.
func EmitGenerateStart(ctx context.Context, pkg string, types int) {
	capitan.Emit(ctx, SignalGenerateStart,
		KeyPackage.Field(pkg),
		KeyTypeCount.Field(types),
	)
}

// EmitGenerateComplete is called by the generator after emitting a package.
func EmitGenerateComplete(ctx context.Context, pkg string, types, warnings int, d time.Duration, err error) {
	fields := []capitan.Field{
		KeyPackage.Field(pkg),
		KeyTypeCount.Field(types),
		KeyWarningCount.Field(warnings),
		KeyDuration.Field(d),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalGenerateComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalGenerateComplete, fields...)
}

package main

import (
	"fmt"

	"github.com/godexlib/dex"
)

type printVisitor struct{}

func (v *printVisitor) Visit(accessFlags uint32, className, superClass string, interfaces []string) dex.DexClassVisitor {
	fmt.Printf("class %s extends %s %v (0x%x)\n", className, superClass, interfaces, accessFlags)
	return &printClassVisitor{}
}
func (v *printVisitor) VisitEnd() {}

type printClassVisitor struct{}

func (c *printClassVisitor) VisitSourceFile(name string) {
	fmt.Printf("  source file: %s\n", name)
}
func (c *printClassVisitor) VisitAnnotation(name string, visibility dex.AnnotationVisibility) dex.DexAnnotationVisitor {
	return nil
}
func (c *printClassVisitor) VisitField(accessFlags uint32, field dex.FieldRef, value interface{}) dex.DexFieldVisitor {
	fmt.Printf("  field %s %s (0x%x) = %v\n", field.Type, field.Name, accessFlags, value)
	return nil
}
func (c *printClassVisitor) VisitMethod(accessFlags uint32, method dex.MethodRef) dex.DexMethodVisitor {
	fmt.Printf("  method %s%v %s (0x%x)\n", method.Name, method.ParamTypes, method.ReturnType, accessFlags)
	return &printMethodVisitor{}
}
func (c *printClassVisitor) VisitEnd() {}

type printMethodVisitor struct{}

func (m *printMethodVisitor) VisitParameterName(index int, name string) {
	fmt.Printf("    param %d: %s\n", index, name)
}
func (m *printMethodVisitor) VisitAnnotation(name string, visibility dex.AnnotationVisibility) dex.DexAnnotationVisitor {
	return nil
}
func (m *printMethodVisitor) VisitParameterAnnotation(index int, name string, visibility dex.AnnotationVisibility) dex.DexAnnotationVisitor {
	return nil
}
func (m *printMethodVisitor) VisitCode() dex.DexCodeVisitor { return &printCodeVisitor{} }
func (m *printMethodVisitor) VisitEnd()                     {}

type printCodeVisitor struct{}

func (c *printCodeVisitor) VisitRegisters(total, ins, outs uint16) {
	fmt.Printf("    registers=%d ins=%d outs=%d\n", total, ins, outs)
}
func (c *printCodeVisitor) VisitTryCatch(start, end dex.Label, types []string, labels []dex.Label, catchAll *dex.Label) {
	fmt.Printf("    try [%d, %d) catches %v\n", start.Offset, end.Offset, types)
}
func (c *printCodeVisitor) VisitLabel(l dex.Label) {
	fmt.Printf("    L%d:\n", l.Offset)
}
func (c *printCodeVisitor) VisitInstruction(insn dex.Instruction) {
	fmt.Printf("      %04x: %s %v\n", insn.Offset, insn.Mnemonic, insn.Registers)
}
func (c *printCodeVisitor) VisitDebug() dex.DexDebugVisitor { return &printDebugVisitor{} }
func (c *printCodeVisitor) VisitEnd()                       {}

type printDebugVisitor struct{}

func (d *printDebugVisitor) VisitLineNumber(line int, offset dex.Label) {
	fmt.Printf("      line %d @ %d\n", line, offset.Offset)
}
func (d *printDebugVisitor) VisitStartLocal(reg uint16, name, typeName, signature string, offset dex.Label) {
	fmt.Printf("      start local v%d %s:%s @ %d\n", reg, name, typeName, offset.Offset)
}
func (d *printDebugVisitor) VisitEndLocal(reg uint16, offset dex.Label)     {}
func (d *printDebugVisitor) VisitRestartLocal(reg uint16, offset dex.Label) {}
func (d *printDebugVisitor) VisitPrologueEnd(offset dex.Label)              {}
func (d *printDebugVisitor) VisitEpilogueBegin(offset dex.Label)            {}
func (d *printDebugVisitor) VisitEnd()                                      {}

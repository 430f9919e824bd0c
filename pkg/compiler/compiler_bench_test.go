package compiler

import "testing"

// simpleSource is a minimal program used for benchmarking the fast path.
const simpleSource = `
fn add(a: u8, b: u8) -> u8 {
	return a + b;
}

fn main() -> u8 {
	let x: u8 = add(3, 4);
	return x;
}
`

// complexSource exercises structs, arrays, loops, pointers and recursion.
const complexSource = `
struct Point { x: u16, y: u16 }

fn sum(arr: @u16, len: u8) -> u16 {
	let total: u16 = 0 as u16;
	let i: u8 = 0;
	while i < len {
		total = total + arr[i];
		i = i + 1;
	}
	return total;
}

fn fib(n: u8) -> u8 {
	if n < 2 { return n; }
	return fib(n - 1) + fib(n - 2);
}

fn main() -> u16 {
	let pts: [Point; 4];
	let vals: [u16; 4];
	let i: u8 = 0;
	while i < 4 {
		pts[i].x = i as u16;
		pts[i].y = (fib(i + 5) as u16) << 2;
		vals[i] = pts[i].x + pts[i].y;
		i = i + 1;
	}
	return sum(&vals[0], 4);
}
`

func BenchmarkCompile_Simple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(simpleSource, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Complex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(complexSource, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRun_Complex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := Run(complexSource, Options{}, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func TestBenchSourcesRun(t *testing.T) {
	r, m := run(t, complexSource)
	// fib(5..8) = 5, 8, 13, 21; each y is fib<<2 and x is the index
	want := uint16(0+1+2+3) + (5+8+13+21)<<2
	res := r.MainResult(m)
	got := uint16(res[0]) | uint16(res[1])<<8
	if got != want {
		t.Errorf("complexSource returned %d, want %d", got, want)
	}
}

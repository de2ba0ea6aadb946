/*
Package sptensor provides a coordinate-format (COO) sparse tensor data model and a
tensor-times-matrix (TTM) multiplication engine.  Sparse tensors appear wherever
multi-way data is mostly empty: knowledge graphs, recommender logs, network traffic
counters.  COO storage keeps only the non-zero blocks, one row of coordinates per
block, so an N-dimensional tensor with a handful of non-zeros costs a handful of rows.

The central operation is TTM: given a sparse tensor A and a dense matrix B sharing
exactly one axis, C = A x_k B contracts that axis and appends the matrix's free axis
as a dense trailing axis of the result.  Two storage regimes are supported: fully
sparse input (every block is a scalar) and semi-sparse input (blocks carry dense
trailing axes).  TTM requires the tensor to be sorted so that the contracted axis is
the least significant sort key; SortCOOTensor establishes that order in place, and
adjacent blocks that agree on every other coordinate then form contiguous fibers that
the kernel accumulates into single output rows.

Axes are identity-bearing: two axes are the same dimension only if one is a copy of
the other, never because their ranges coincide.  This is what lets the TTM
kernel match the matrix's rows to exactly one tensor axis without positional
bookkeeping.

Dense interop goes through gorgonia.org/tensor for rank-N arrays and
gonum.org/v1/gonum/mat for rank-2 operands, so tensors built here may be fed from and
exported to the wider Go numerical ecosystem.
*/
package sptensor

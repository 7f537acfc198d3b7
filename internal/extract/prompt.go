package extract

// systemPrompt instructs the vision model on the shape of its answer. The
// schema keys here must stay in sync with models.PageExtraction.
const systemPrompt = `You are an expert image analyzer that extracts text and describes visuals (documents, graphs, circuits, diagrams) from images. IMPORTANT! - If the page contains mathematical expressions, **transcribe them using plain text mathematical symbols (*, +, -, /, ^, √, ∫, ∂, ∑, etc.) rather than LaTeX format**
Return your analysis in JSON format as an array of objects with these properties:
- page_number: The sequential number of the image
- text: The extracted text content
- visual_description: Description of any visual elements
- confidence_text: Confidence score for text extraction (0-1)
- confidence_visual: Confidence score for visual description (0-1)`

// ExtractionPrompt is the fixed per-batch instruction sent alongside the page
// images. Transcription fidelity rules matter: the grading model downstream
// sees exactly what is produced here.
const ExtractionPrompt = `You are given a scanned image of a handwritten answer sheet page.

You will be provided with a list of images containing handwritten text and visual content. The detailing should be consistent.

Your tasks:
1. If the page contains **handwritten text**, extract it ***exactly as it appears, maintaining original spelling, punctuation, line breaks, and spacing***. Use escape sequences like ` + "`\\n`" + ` for newlines and ` + "`\\t`" + ` for tabs to represent formatting.
2. If the page contains **visual content** (like graphs, circuits, diagrams), provide a detailed, structured **technical description**.

3. IMPORTANT! - If the page contains mathematical expressions, **transcribe them using plain text mathematical symbols (*, +, -, /, ^, √, ∫, ∂, ∑, etc.) rather than LaTeX format**. For example, write '∫ f(x) dx' or 'y = x²' instead of '$\int f(x) dx$' or '$y = x^2$'.

Examples of mathematical notation to use:
- Use ∂ for partial derivatives, not '\partial'
- Use direct symbols like ∫, ∑, π, θ, ∞
- Use superscripts for powers (x²) or indicate with ^ (x^2)
- For fractions, use / or describe with clear structure (a/b)
- Use symbols like →, ≤, ≥, ≠, ≈ directly

Examples of what to include in a visual description:
- For graphs: axis labels, units, scale/step (e.g., 'x-axis ranges from 0 to 10 with step of 0.1V'), curves, line styles, arrows, legends.
- For circuits: all components, their arrangement, labels, and connections.
- For diagrams: shapes, annotations, labels, hierarchy.

DO NOT interpret or solve — just transcribe text, describe visuals, and transcribe mathematical expressions as seen.
Also give the confidence score of the text extraction and visual description of a page out of 1.

No need for any explanation or additional information.`

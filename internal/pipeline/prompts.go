package pipeline

// formattingInstructions covers the inline markup rules shared by the
// import prompt: math delimiters, heading structure, and the figure,
// image, citation, footnote, and html-figure tokens.
const formattingInstructions = `Within these structural tags (but do NOT add any tags within header text), apply the following detailed markdown formatting rules:
*   **Formatting Preservation:** Crucially, preserve all bold and italic formatting from the original PDF.
*   **Quotation marks:** Latex quotation marks should be translated into plain double quotes.
*   **Formulas, equations, variables:** ALL mathematical formulas, equations, and variables should be wrapped in single or double dollar signs, e.g. $formula$ or $$long equation$$, following the dollar signs used in the original latex.
        Try to convert latex equations into something supported by KaTeX html rendering.
        \begin{equation} and \end{equation} should be replaced with $$ and $$
        \begin{align} and \end{align} with equations inside should also instead be wrapped in $$ and $$
        True dollar signs should be represented with \$ just as in latex.
*   **Headings:** Maintain the hierarchical header structure from the file, using # or ## markdown headers. Do *not* use *header* style. Assume most academic papers will start with "Abstract" and "Introduction" as the first major headers (though "Abstract" will be wrapped in its own [[l-abs]] block). Maintain any numbering (e.g., "I. INTRODUCTION", "A. CONTRIBUTIONS").
*   **Figures with Subfigures:** For figures that contain subfigures, use the following structure:
    *   Wrap the entire figure block with [[l-fig-start-FIG_ID]] and [[l-fig-end-FIG_ID]]. FIG_ID should be a unique identifier for the figure, like the one from \label{fig:...}.
    *   Inside this block, each subfigure's image should be tagged using the standard image tag: [[l-image_path]].
    *   Each subfigure's caption (if it has one) should follow its image tag, using the standard image caption tag: [[l-image_cap_path]]caption text[[l-image_cap_path]].
    *   The main caption for the entire figure should be placed after the figure block, using [[l-fig-cap-FIG_ID]]main caption text[[l-fig-cap-FIG_ID]].
*   **Images (standalone):** For standalone images (not in a subfigure group), use the standard image tag: [[l-image_path]], where path is the exact image path value cited in the latex file (usually found in \includegraphics{path}, typically following the format 'directory/image_name.ext'). Ensure image captions are maintained and included as [[l-image_cap_path]]caption text[[l-image_cap_path]] directly after the image.
*   **Inline references:** Wrap any inline references like [[l-cit-X]], where X corresponds with the reference id - X should use the citation id from the latex file, often within \cite{id}.
*   **Footnotes:** For LaTeX footnotes (\footnote{...}, \footnotemark, \footnotetext{...}), use the following tagging scheme:
    *   Generate a unique, sequential ID for each footnote (e.g., 1, 2, 3).
    *   At the point of the footnote reference in the main text, insert a marker tag: [[l-foot-ID]].
    *   The content of the footnote should be placed in a dedicated footnotes section at the end of the document.
    *   The content for each footnote should be wrapped in content tags: [[l-footnote-start-ID]]the footnote text[[l-footnote-end-ID]].
*   **Tables, Algorithms and ALL other text-based figures and explanatory containers:** Wrap these within [[l-html_N]] and [[l-html_N]], and reproduce the table, algorithm, or other text figure in HTML instead of markdown, matching the format as well as possible (just output html without any decorators). Variables can be placed within $variable$. Ensure the captions are maintained and placed within [[l-html_cap_N]] and [[l-html_cap_N]], following the [[l-html_N]] block.
*   **Captions:** Within the [[l-image_cap_X]] tags (where X is the image path value), captions must keep the '{chart type} N' text as it appears in the paper caption, such as 'Figure N' or 'Table N'.
`

// ImportPrompt instructs a model to emit a whole paper as tagged markdown.
// The latex source, when available, is sent as additional context ahead of
// this prompt.
const ImportPrompt = `Use the latex to figure out the formatting for this paper and the pdf bytes to fill in any gaps. I want the paper text extracted in markdown.

Your output must strictly adhere to the following structure using special tags, leveraging your knowledge of the PDF layout for accurate section identification:

1.  **Title and Authors:** Usually the very first text, representing the document's main title and its authors, should be wrapped in [[l-tit]] and [[l-tit]]. Each distinct line or logical group (e.g., title itself, then author list) should receive its own separate pair of these tags.
    *   Example: [[l-tit]] # Main Title [[l-tit]] followed by [[l-aut]] Author One, Author Two [[l-aut]].
2.  **Abstract:** The entire abstract section, excluding its header, must be wrapped in [[l-abs]] and [[l-abs]].
3.  **Main Content:** All primary body content, typically starting immediately after the "Abstract" and extending up to (but *not* including) the "References" section, must be wrapped in [[l-con]] and [[l-con]].
4.  **Footnotes:** After main content and before the references, include a footnotes section wrapped in [[l-footnotes-start]] and [[l-footnotes-end]]. This section will contain the content of all footnotes from the document.
5.  **References:** The references section should be wrapped in [[l-refs-start]] and [[l-refs-end]], and should NOT include any references header. Each individual reference should be wrapped in [[l-ref-X]] and [[l-ref]], where X is the citation id from the latex file. It should maintain the original bold / italic formatting as well.
6.  **Text Flow & Paragraphs:** Important: Make sure to preserve paragraph line breaks from the original paper.

Stop generating after [[l-refs-end]] - footnotes should be the last section.
Do not include anything from the Appendix section.

` + formattingInstructions + `
Make sure that the content is accurate to the pdf bytes and does NOT include any latex syntax outside of the $equations$.

Your output should look something like:

[[l-tit]]Paper Title[[l-tit]]
[[l-aut]]Authors[[l-aut]]

[[l-abs]]...abstract content...[[l-abs]]

[[l-con]]

# Heading (likely Introduction)

[[l-fig-start-FIG1]]
    [[l-image_imgs/sub_1.png]]
    [[l-image_cap_imgs/sub_1.png]]Fig. 1a: Subfigure one caption.[[l-image_cap_imgs/sub_1.png]]
    [[l-image_imgs/sub_2.png]]
    [[l-image_cap_imgs/sub_2.png]]Fig. 1b: Subfigure two caption.[[l-image_cap_imgs/sub_2.png]]
[[l-fig-end-FIG1]]
[[l-fig-cap-FIG1]]Fig. 1: Main figure caption.[[l-fig-cap-FIG1]]


Optional content

## Subheading 1

This is a sentence with a citation [[l-cit-citation1]] and a footnote[[l-foot-1]].

1) Some bullets
2) Bullet number 2

...some more content

## Subheading 2
[[l-image_imgs/image_2.png]]
[[l-image_cap_imgs/image_2.png]]Fig. 2: Figure two caption.[[l-image_cap_imgs/image_2.png]]

Some more content...

[[l-html_table1]]<table>...</table>[[l-html_table1]]
[[l-html_cap_table1]]Table 1: Table one caption.[[l-html_cap_table1]]


[[l-con]]


[[l-footnotes-start]]
[[l-footnote-start-1]]This is the first footnote's text.[[l-footnote-end-1]]
[[l-footnotes-end]]

[[l-refs-start]]
[[l-ref-citation1]][1] authors, "Title" in conference, year...[[l-ref]]
[[l-refs-end]]
`

// ConceptExtractionPrompt asks for key concepts of an abstract as strict
// JSON matching the concepts.Response schema.
const ConceptExtractionPrompt = `You are an expert academic assistant tasked with extracting key concepts and terms
from research paper abstracts. For each concept, provide its name and two content items:
1. A general definition of the concept.
2. Its specific relevance to the provided abstract.

Your output MUST be a JSON object with a single key 'concepts', which contains
a list of concept objects. Each concept object must have 'name' and 'contents'.
The 'contents' field should be a list of two objects.

- The first content object MUST have a label of "definition" and a value containing a concise, general definition of the concept (8-16 words).
- The second content object MUST have a label of "relevance" and a value explaining why this concept is important in the context of this specific paper.

DO NOT include 'id' or 'in_text_citations' in your JSON output; these will be
handled by the downstream parsing script.

Example JSON output structure:
{
  "concepts": [
    {
      "name": "Large Language Models",
      "contents": [
        {
          "label": "definition",
          "value": "Advanced AI models capable of understanding and generating human language."
        },
        {
          "label": "relevance",
          "value": "This paper uses Large Language Models to develop a new method for semantic search."
        }
      ]
    },
    {
      "name": "Semantic Search",
      "contents": [
        {
          "label": "definition",
          "value": "A search technique that understands the meaning and context of queries."
        },
        {
          "label": "relevance",
          "value": "The core contribution of this work is a novel semantic search algorithm."
        }
      ]
    }
  ]
}
`
